package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/gia/internal/constants"
	"github.com/fivetwenty-io/gia/pkg/iga"
)

// AppDefinition is the YAML file format of a disconnected application.
//
//	name: HR Export
//	description: Accounts exported nightly from HR
//	owner_ids: [8a2e...]
//	object_types:
//	  __ACCOUNT__:
//	    type: account
//	    properties:
//	      userName: {type: string}
//	file_uploads:
//	  - file_path: accounts.csv
//	    object_type: __ACCOUNT__
type AppDefinition struct {
	Name        string                          `json:"name"                   yaml:"name"`
	Description string                          `json:"description"            yaml:"description"`
	OwnerIDs    []string                        `json:"owner_ids,omitempty"    yaml:"owner_ids,omitempty"`
	Icon        string                          `json:"icon,omitempty"         yaml:"icon,omitempty"`
	ObjectTypes map[string]ObjectTypeDefinition `json:"object_types,omitempty" yaml:"object_types,omitempty"`
	FileUploads []iga.FileUpload                `json:"file_uploads,omitempty" yaml:"file_uploads,omitempty"`
}

// ObjectTypeDefinition is an object type entry of an AppDefinition.
type ObjectTypeDefinition struct {
	Type       string                 `json:"type"                 yaml:"type"`
	Properties map[string]interface{} `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// validateFilePath validates that a file path is safe to read.
func validateFilePath(filePath string) (string, error) {
	if filePath == "" {
		return "", constants.ErrInvalidFilePath
	}

	cleanPath := filepath.Clean(filePath)

	if !filepath.IsAbs(cleanPath) && (cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator))) {
		return "", fmt.Errorf("%w: %s", constants.ErrPathTraversalNotAllowed, filePath)
	}

	_, err := os.Stat(cleanPath)
	if err != nil {
		return "", fmt.Errorf("file not accessible: %w", err)
	}

	return cleanPath, nil
}

// loadDefinition reads an application definition file. Relative upload
// paths are resolved against the directory of the file.
func loadDefinition(path string) (*AppDefinition, error) {
	cleanPath, err := validateFilePath(path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- path validated above
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}

	var definition AppDefinition

	err = yaml.Unmarshal(data, &definition)
	if err != nil {
		return nil, fmt.Errorf("failed to parse definition %s: %w", path, err)
	}

	if definition.Name == "" {
		return nil, fmt.Errorf("%s: %w", path, constants.ErrApplicationNameRequired)
	}

	baseDir := filepath.Dir(cleanPath)
	for i, upload := range definition.FileUploads {
		if upload.FilePath != "" && !filepath.IsAbs(upload.FilePath) {
			definition.FileUploads[i].FilePath = filepath.Join(baseDir, upload.FilePath)
		}
	}

	return &definition, nil
}

// ToApplication builds the application model. Object types are added in
// sorted order so errors are reported deterministically.
func (d *AppDefinition) ToApplication() (*iga.DisconnectedApplication, error) {
	app := iga.NewDisconnectedApplication(d.Name,
		iga.WithDescription(d.Description),
		iga.WithOwnerIDs(d.OwnerIDs...),
		iga.WithIcon(d.Icon),
	)

	ids := make([]string, 0, len(d.ObjectTypes))
	for id := range d.ObjectTypes {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	for _, id := range ids {
		objectType := d.ObjectTypes[id]
		if objectType.Type == "" {
			return nil, fmt.Errorf("%s: %w", id, constants.ErrObjectTypeKindRequired)
		}

		kind, err := iga.ParseObjectKind(objectType.Type)
		if err != nil {
			return nil, fmt.Errorf("object type %s: %w", id, err)
		}

		_, err = app.AddObjectType(id, kind, objectType.Properties)
		if err != nil {
			return nil, err
		}
	}

	for _, upload := range d.FileUploads {
		_, err := app.AddFileUpload(upload.FilePath, upload.ObjectType)
		if err != nil {
			return nil, err
		}
	}

	return app, nil
}

// definitionFromObject converts an application read from the API into the
// definition file format.
func definitionFromObject(obj iga.Object) *AppDefinition {
	definition := &AppDefinition{
		Name:        obj.String("name"),
		Description: obj.String("description"),
		Icon:        obj.String("icon"),
	}

	if owners, ok := obj["ownerIds"].([]interface{}); ok {
		for _, owner := range owners {
			if id, ok := owner.(string); ok {
				definition.OwnerIDs = append(definition.OwnerIDs, id)
			}
		}
	}

	objectTypes, ok := obj["objectTypes"].(map[string]interface{})
	if !ok || len(objectTypes) == 0 {
		return definition
	}

	definition.ObjectTypes = make(map[string]ObjectTypeDefinition, len(objectTypes))

	for id, raw := range objectTypes {
		entry, _ := raw.(map[string]interface{})
		objectType := ObjectTypeDefinition{Type: iga.Object(entry).String("type")}

		if properties, ok := entry["properties"].(map[string]interface{}); ok {
			objectType.Properties = properties
		}

		definition.ObjectTypes[id] = objectType
	}

	return definition
}

// writeDefinition exports a definition as YAML.
func writeDefinition(path string, definition *AppDefinition) error {
	data, err := yaml.Marshal(definition)
	if err != nil {
		return fmt.Errorf("failed to encode definition: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
