package references_test

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/RepreZen/SwagEdit/references"
	"github.com/RepreZen/SwagEdit/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const nginxConfig = `
server {
    listen 80;
    server_name localhost;
    root /remote;

    location / {
        try_files $uri =404;
    }

    location ~* \.yaml$ {
        default_type application/yaml;
    }
}
`

// startRemoteServer serves testdata/remote from an nginx container and returns its base URL.
func startRemoteServer(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	remotePath, err := filepath.Abs("testdata/remote")
	require.NoError(t, err)

	req := testcontainers.ContainerRequest{
		Image:        "nginx:alpine",
		ExposedPorts: []string{"80/tcp"},
		Files: []testcontainers.ContainerFile{
			{
				HostFilePath:      remotePath,
				ContainerFilePath: "/remote",
				FileMode:          0o755,
			},
			{
				ContainerFilePath: "/etc/nginx/conf.d/default.conf",
				FileMode:          0o644,
				Reader:            strings.NewReader(nginxConfig),
			},
		},
		WaitingFor: wait.ForHTTP("/common.yaml").WithPort("80/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "failed to start remote server container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "80")
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

func TestValidator_RemoteServer(t *testing.T) {
	t.Parallel()

	baseURL := startRemoteServer(t)

	text := `definitions:
  A:
    $ref: 'common.yaml#/definitions/Error'
  B:
    $ref: 'pet.json'
  C:
    $ref: 'common.yaml#/definitions/Missing'
  D:
    $ref: 'missing.yaml#/definitions/Error'
  E:
    $ref: 'common.yaml#/definitions/Code'
`

	doc := parse(t, "api.yaml", text)
	v := references.NewValidator(references.WithResolverOptions(
		references.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
	))

	assert.Equal(t, []expected{
		{line: 7, severity: validation.SeverityWarning, rule: validation.RuleValidationUnresolvedReference, message: "reference 'common.yaml#/definitions/Missing' cannot be resolved"},
		{line: 9, severity: validation.SeverityWarning, rule: validation.RuleValidationUnresolvedReference, message: "reference 'missing.yaml#/definitions/Error' cannot be resolved"},
		{line: 11, severity: validation.SeverityError, rule: validation.RuleValidationReferenceType, message: "invalid object type for reference 'common.yaml#/definitions/Code'"},
	}, summarize(v.Validate(t.Context(), baseURL+"/api.yaml", doc)))

	r := references.NewResolver()
	target, err := r.Resolve(t.Context(), baseURL+"/api.yaml", nil, "pet.json#/properties/error")
	require.NoError(t, err)
	assert.Equal(t, baseURL+"/pet.json", target.Location)
	assert.Equal(t, 5, target.Line())
}
