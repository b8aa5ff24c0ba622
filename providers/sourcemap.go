package providers

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/go-sourcemap/sourcemap"
)

const inlineSourceMapPrefix = "//# sourceMappingURL=data:application/json;base64,"

// ExtractInlineSourceMap parses the inline source map of generated code and returns the code without it.
// The consumer is nil when the code carries no source map.
func ExtractInlineSourceMap(code string) (*sourcemap.Consumer, string, error) {
	idx := strings.LastIndex(code, inlineSourceMapPrefix)
	if idx == -1 {
		return nil, code, nil
	}

	stripped := code[:idx]
	b64Data := strings.TrimSpace(code[idx+len(inlineSourceMapPrefix):])
	if newlineIdx := strings.IndexAny(b64Data, "\r\n"); newlineIdx != -1 {
		b64Data = b64Data[:newlineIdx]
	}

	jsonData, err := base64.StdEncoding.DecodeString(b64Data)
	if err != nil {
		return nil, stripped, fmt.Errorf("decoding source map base64: %w", err)
	}

	consumer, err := sourcemap.Parse("", jsonData)
	if err != nil {
		if strings.Contains(err.Error(), "mappings are empty") {
			return nil, stripped, nil
		}
		return nil, stripped, fmt.Errorf("parsing source map: %w", err)
	}

	return consumer, stripped, nil
}

// MappedError is a script exception located in the original source.
type MappedError struct {
	Original   error
	SourceFile string
	Line       int
	Column     int
	Message    string
}

func (e *MappedError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.SourceFile, e.Line, e.Column, e.Message)
	}
	if e.SourceFile != "" {
		return fmt.Sprintf("%s: %s", e.SourceFile, e.Message)
	}
	return e.Message
}

func (e *MappedError) Unwrap() error {
	return e.Original
}

// MapException locates a goja exception in sourceFile, through sm when the script was transpiled.
// The innermost stack frame belonging to the script is used.
func MapException(exc *goja.Exception, sourceFile string, sm *sourcemap.Consumer) *MappedError {
	mapped := &MappedError{
		Original:   exc,
		SourceFile: sourceFile,
		Message:    exceptionMessage(exc),
	}

	for _, frame := range exc.Stack() {
		if frame.SrcName() != sourceFile {
			continue
		}
		pos := frame.Position()
		if pos.Line <= 0 {
			continue
		}

		mapped.Line, mapped.Column = pos.Line, pos.Column
		if sm != nil {
			// source map columns are 0-based
			if _, _, line, column, ok := sm.Source(pos.Line, pos.Column-1); ok {
				mapped.Line, mapped.Column = line, column+1
			}
		}
		break
	}

	return mapped
}

func exceptionMessage(exc *goja.Exception) string {
	if v := exc.Value(); v != nil {
		return v.String()
	}
	return exc.Error()
}
