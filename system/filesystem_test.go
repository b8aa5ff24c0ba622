package system_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/RepreZen/SwagEdit/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystem_Open_Success(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "pet.yaml")
	testContent := []byte("type: object\n")
	require.NoError(t, os.WriteFile(testFile, testContent, 0o644))

	fsys := &system.FileSystem{}
	file, err := fsys.Open(testFile)
	require.NoError(t, err, "should open file successfully")
	defer file.Close()

	content := make([]byte, len(testContent))
	n, err := file.Read(content)
	require.NoError(t, err)
	assert.Equal(t, len(testContent), n)
	assert.Equal(t, testContent, content)
}

func TestFileSystem_Open_Error(t *testing.T) {
	t.Parallel()

	fsys := &system.FileSystem{}
	file, err := fsys.Open("nonexistent-file.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, file)
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "api.yaml")
	require.NoError(t, os.WriteFile(testFile, []byte("swagger: '2.0'\n"), 0o644))

	tests := []struct {
		name     string
		fsys     system.VirtualFS
		file     string
		expected string
		wantErr  bool
	}{
		{
			name:     "os file system with absolute path",
			fsys:     &system.FileSystem{},
			file:     testFile,
			expected: "swagger: '2.0'\n",
		},
		{
			name:     "nil defaults to os file system",
			file:     testFile,
			expected: "swagger: '2.0'\n",
		},
		{
			name:     "map file system",
			fsys:     fstest.MapFS{"specs/pet.yaml": {Data: []byte("type: object\n")}},
			file:     "specs/pet.yaml",
			expected: "type: object\n",
		},
		{
			name:    "missing file",
			fsys:    fstest.MapFS{},
			file:    "specs/missing.yaml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := system.ReadFile(tt.fsys, tt.file)
			if tt.wantErr {
				assert.ErrorIs(t, err, os.ErrNotExist)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(data))
		})
	}
}
