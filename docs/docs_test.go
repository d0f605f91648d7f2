package docs

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generalAnnotations reads the first value of each swag general annotation
// on main.
func generalAnnotations(t *testing.T) map[string]string {
	t.Helper()
	src, err := os.ReadFile("../main.go")
	require.NoError(t, err)

	out := map[string]string{}
	for _, line := range strings.Split(string(src), "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), "// @")
		if !ok {
			continue
		}
		key, value, _ := strings.Cut(rest, " ")
		if _, seen := out[key]; !seen {
			out[key] = strings.TrimSpace(value)
		}
	}
	return out
}

func TestSwaggerInfoMatchesAnnotations(t *testing.T) {
	annotations := generalAnnotations(t)

	assert.Equal(t, annotations["title"], SwaggerInfo.Title)
	assert.Equal(t, annotations["version"], SwaggerInfo.Version)
	assert.Equal(t, annotations["description"], SwaggerInfo.Description)
	assert.Equal(t, annotations["BasePath"], SwaggerInfo.BasePath)
}

func TestReadDocIsValidJSON(t *testing.T) {
	var doc struct {
		Info struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))

	assert.Equal(t, SwaggerInfo.Description, doc.Info.Description)
	assert.Contains(t, doc.Paths, "/todos/{id}")
	assert.Contains(t, doc.Paths, "/auth/login")
}
