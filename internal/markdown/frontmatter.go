package markdown

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FolderKey is the front matter key naming the image folder for a document.
const FolderKey = "image_folder"

// FrontMatter parses a leading YAML block delimited by "---" lines.
// Documents without front matter yield an empty map.
func FrontMatter(input string) (map[string]any, error) {
	frontMatter := map[string]any{}

	lines := strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	if len(lines) < 3 || strings.TrimSpace(lines[0]) != "---" {
		return frontMatter, nil
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return nil, fmt.Errorf("front matter not closed")
	}
	frontText := strings.Join(lines[1:end], "\n")
	if err := yaml.Unmarshal([]byte(frontText), &frontMatter); err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}
	if frontMatter == nil {
		frontMatter = map[string]any{}
	}
	return frontMatter, nil
}

// FolderFromFrontMatter returns the image_folder declared in the document's
// front matter, or "" when absent.
func FolderFromFrontMatter(input string) (string, error) {
	frontMatter, err := FrontMatter(input)
	if err != nil {
		return "", err
	}
	value, ok := frontMatter[FolderKey]
	if !ok || value == nil {
		return "", nil
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case int, int64, float64:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("%s must be a string", FolderKey)
	}
}
