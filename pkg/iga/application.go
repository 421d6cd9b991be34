package iga

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fivetwenty-io/gia/internal/constants"
)

// ObjectTypeDefinition is a single object type within a disconnected
// application, e.g. "__ACCOUNT__" of kind account.
type ObjectTypeDefinition struct {
	ID         string                 `json:"id"         yaml:"id"`
	Type       ObjectKind             `json:"type"       yaml:"type"`
	Properties map[string]interface{} `json:"properties" yaml:"properties"`
}

// FileUpload is a CSV file to upload for a specific object type.
type FileUpload struct {
	FilePath   string `json:"file_path"   yaml:"file_path"`
	ObjectType string `json:"object_type" yaml:"object_type"`
}

// DisconnectedApplication is the local model of a disconnected application.
// Object types and file uploads are registered in memory and sent to the
// server by Push.
type DisconnectedApplication struct {
	Name        string
	Description string
	OwnerIDs    []string
	Icon        string
	ExtraFields map[string]interface{}

	objectTypes map[string]*ObjectTypeDefinition
	fileUploads []FileUpload
}

// ApplicationOption configures a DisconnectedApplication.
type ApplicationOption func(*DisconnectedApplication)

// WithDescription sets the application description.
func WithDescription(description string) ApplicationOption {
	return func(a *DisconnectedApplication) {
		a.Description = description
	}
}

// WithOwnerIDs sets the owner list.
func WithOwnerIDs(ownerIDs ...string) ApplicationOption {
	return func(a *DisconnectedApplication) {
		a.OwnerIDs = append([]string(nil), ownerIDs...)
	}
}

// WithIcon sets the application icon.
func WithIcon(icon string) ApplicationOption {
	return func(a *DisconnectedApplication) {
		a.Icon = icon
	}
}

// WithExtraField adds a field merged into the payload after the fixed fields.
func WithExtraField(key string, value interface{}) ApplicationOption {
	return func(a *DisconnectedApplication) {
		a.ExtraFields[key] = value
	}
}

// WithExtraFields adds several extra payload fields.
func WithExtraFields(fields map[string]interface{}) ApplicationOption {
	return func(a *DisconnectedApplication) {
		for key, value := range fields {
			a.ExtraFields[key] = value
		}
	}
}

// NewDisconnectedApplication creates an empty application model.
func NewDisconnectedApplication(name string, opts ...ApplicationOption) *DisconnectedApplication {
	app := &DisconnectedApplication{
		Name:        name,
		ExtraFields: make(map[string]interface{}),
		objectTypes: make(map[string]*ObjectTypeDefinition),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// AddObjectType defines an object type for this application. Adding an id
// twice fails and leaves the first definition untouched. The properties are
// copied, so the stored definition cannot change after it is added.
func (a *DisconnectedApplication) AddObjectType(id string, kind ObjectKind, properties map[string]interface{}) (ObjectTypeDefinition, error) {
	if _, exists := a.objectTypes[id]; exists {
		return ObjectTypeDefinition{}, &ConfigurationError{
			Message: fmt.Sprintf("object type '%s' already defined", id),
			Err:     ErrObjectTypeExists,
		}
	}

	if _, err := ParseObjectKind(string(kind)); err != nil {
		return ObjectTypeDefinition{}, &ConfigurationError{
			Message: fmt.Sprintf("object type '%s': %v", id, err),
			Err:     ErrInvalidObjectKind,
		}
	}

	definition := &ObjectTypeDefinition{
		ID:         id,
		Type:       kind,
		Properties: copyProperties(properties),
	}
	a.objectTypes[id] = definition

	return definition.clone(), nil
}

func (d *ObjectTypeDefinition) clone() ObjectTypeDefinition {
	return ObjectTypeDefinition{
		ID:         d.ID,
		Type:       d.Type,
		Properties: copyProperties(d.Properties),
	}
}

// copyProperties deep-copies nested maps and slices of a property schema.
func copyProperties(properties map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(properties))
	for key, value := range properties {
		result[key] = copyValue(value)
	}

	return result
}

func copyValue(value interface{}) interface{} {
	switch typed := value.(type) {
	case map[string]interface{}:
		return copyProperties(typed)
	case []interface{}:
		items := make([]interface{}, len(typed))
		for i, item := range typed {
			items[i] = copyValue(item)
		}

		return items
	default:
		return value
	}
}

// AddFileUpload registers a CSV file to upload during Push. The object type
// must already be defined.
func (a *DisconnectedApplication) AddFileUpload(filePath, objectType string) (FileUpload, error) {
	if _, exists := a.objectTypes[objectType]; !exists {
		return FileUpload{}, &ConfigurationError{
			Message: fmt.Sprintf("object type '%s' not defined, add it with AddObjectType first", objectType),
			Err:     ErrObjectTypeUndefined,
		}
	}

	upload := FileUpload{FilePath: filePath, ObjectType: objectType}
	a.fileUploads = append(a.fileUploads, upload)

	return upload, nil
}

// ObjectTypes returns a deep copy of the defined object types keyed by id.
func (a *DisconnectedApplication) ObjectTypes() map[string]ObjectTypeDefinition {
	result := make(map[string]ObjectTypeDefinition, len(a.objectTypes))
	for id, definition := range a.objectTypes {
		result[id] = definition.clone()
	}

	return result
}

// ObjectTypeIDs returns the defined object type ids in sorted order.
func (a *DisconnectedApplication) ObjectTypeIDs() []string {
	ids := make([]string, 0, len(a.objectTypes))
	for id := range a.objectTypes {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// FileUploads returns a copy of the registered uploads in registration order.
func (a *DisconnectedApplication) FileUploads() []FileUpload {
	return append([]FileUpload(nil), a.fileUploads...)
}

// ApplicationPayload is the body of application create and full-replace
// update calls. Extra is merged last and may override any fixed field.
type ApplicationPayload struct {
	Name           string                          `json:"name"`
	Description    string                          `json:"description"`
	IsDisconnected bool                            `json:"isDisconnected"`
	DatasourceID   string                          `json:"datasourceId"`
	Authoritative  bool                            `json:"authoritative"`
	OwnerIDs       []string                        `json:"ownerIds,omitempty"`
	Icon           string                          `json:"icon,omitempty"`
	ObjectTypes    map[string]ObjectTypeDefinition `json:"objectTypes,omitempty"`
	Extra          map[string]interface{}          `json:"-"`
}

// ToMap returns the payload as a JSON-shaped map with Extra merged last.
func (p *ApplicationPayload) ToMap() map[string]interface{} {
	payload := map[string]interface{}{
		"name":           p.Name,
		"description":    p.Description,
		"isDisconnected": p.IsDisconnected,
		"datasourceId":   p.DatasourceID,
		"authoritative":  p.Authoritative,
	}

	if len(p.OwnerIDs) > 0 {
		payload["ownerIds"] = p.OwnerIDs
	}

	if p.Icon != "" {
		payload["icon"] = p.Icon
	}

	if len(p.ObjectTypes) > 0 {
		payload["objectTypes"] = p.ObjectTypes
	}

	for key, value := range p.Extra {
		payload[key] = value
	}

	return payload
}

// MarshalJSON implements json.Marshaler.
func (p *ApplicationPayload) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(p.ToMap())
	if err != nil {
		return nil, fmt.Errorf("marshaling application payload: %w", err)
	}

	return data, nil
}

// ToApplicationPayload serializes the model for create and update calls.
func (a *DisconnectedApplication) ToApplicationPayload() *ApplicationPayload {
	payload := &ApplicationPayload{
		Name:           a.Name,
		Description:    a.Description,
		IsDisconnected: true,
		DatasourceID:   constants.DisconnectedDatasourceID,
		Authoritative:  false,
		Icon:           a.Icon,
		Extra:          make(map[string]interface{}, len(a.ExtraFields)),
	}

	if len(a.OwnerIDs) > 0 {
		payload.OwnerIDs = append([]string(nil), a.OwnerIDs...)
	}

	if len(a.objectTypes) > 0 {
		payload.ObjectTypes = a.ObjectTypes()
	}

	for key, value := range a.ExtraFields {
		payload.Extra[key] = value
	}

	return payload
}
