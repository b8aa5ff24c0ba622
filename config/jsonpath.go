package config

import (
	"github.com/speakeasy-api/jsonpath/pkg/jsonpath"
	jsonpathconfig "github.com/speakeasy-api/jsonpath/pkg/jsonpath/config"
	"github.com/vmware-labs/yaml-jsonpath/pkg/yamlpath"
	"gopkg.in/yaml.v3"
)

// queryable selects nodes of a raw tree.
type queryable interface {
	Query(root *yaml.Node) []*yaml.Node
}

type yamlPathQueryable struct {
	path *yamlpath.Path
}

func (y yamlPathQueryable) Query(root *yaml.Node) []*yaml.Node {
	// errors aren't possible from yamlpath.
	result, _ := y.path.Find(root)
	return result
}

type rfcJSONPathQueryable struct {
	path *jsonpath.JSONPath
}

func (r rfcJSONPathQueryable) Query(root *yaml.Node) []*yaml.Node {
	return r.path.Query(root)
}

func newPath(expr string, mode JSONPathMode) (queryable, error) {
	if mode == JSONPathLegacy {
		path, err := yamlpath.NewPath(expr)
		if err != nil {
			return nil, err
		}
		return yamlPathQueryable{path: path}, nil
	}

	path, err := jsonpath.NewPath(expr, jsonpathconfig.WithPropertyNameExtension())
	if err != nil {
		return nil, err
	}
	return rfcJSONPathQueryable{path: path}, nil
}
