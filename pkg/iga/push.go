package iga

import (
	"context"
	"fmt"
	"time"
)

// PushEventType classifies events emitted during Push.
type PushEventType string

const (
	// PushEventUpsert is emitted when Push replaces an existing application.
	PushEventUpsert PushEventType = "application.upsert"

	// PushEventCompleted is emitted once Push has finished every step.
	PushEventCompleted PushEventType = "application.pushed"
)

// PushWarning is a non-fatal advisory raised during Push.
type PushWarning struct {
	ApplicationID string `json:"applicationId" yaml:"applicationId"`
	Message       string `json:"message"       yaml:"message"`
}

// PushEvent describes something that happened during Push. Publishers may
// assign their own identifiers.
type PushEvent struct {
	ID              string        `json:"id,omitempty"`
	Type            PushEventType `json:"type"`
	ApplicationID   string        `json:"applicationId"`
	ApplicationName string        `json:"applicationName"`
	Message         string        `json:"message,omitempty"`
	ObjectTypes     []string      `json:"objectTypes,omitempty"`
	Uploads         int           `json:"uploads,omitempty"`
	Timestamp       time.Time     `json:"timestamp"`
}

// EventPublisher receives push events.
type EventPublisher interface {
	Publish(ctx context.Context, event PushEvent) error
}

// PushResult is the outcome of a successful Push.
type PushResult struct {
	ApplicationID       string            `json:"applicationId"       yaml:"applicationId"`
	ApplicationResponse Object            `json:"applicationResponse" yaml:"applicationResponse"`
	ObjectTypeResponses map[string]Object `json:"objectTypeResponses" yaml:"objectTypeResponses"`
	UploadResponses     []Object          `json:"uploadResponses"     yaml:"uploadResponses"`
	Warnings            []PushWarning     `json:"warnings,omitempty"  yaml:"warnings,omitempty"`
}

type pushConfig struct {
	logger    Logger
	publisher EventPublisher
	now       func() time.Time
}

// PushOption configures a Push call.
type PushOption func(*pushConfig)

// WithPushLogger sets the logger used for progress and warnings.
func WithPushLogger(logger Logger) PushOption {
	return func(c *pushConfig) {
		c.logger = logger
	}
}

// WithEventPublisher publishes upsert and completion events.
func WithEventPublisher(publisher EventPublisher) PushOption {
	return func(c *pushConfig) {
		c.publisher = publisher
	}
}

// Push creates or updates the application on the server, reconciles every
// object type and uploads the registered files.
//
// When an application with the same name exists and upsert is false, Push
// fails with a ConfigurationError without touching the server. Any failure
// after the first mutation is returned as is; nothing is rolled back.
func (a *DisconnectedApplication) Push(ctx context.Context, apps ApplicationsClient, upsert bool, opts ...PushOption) (*PushResult, error) {
	cfg := newPushConfig(opts)

	existing, err := apps.FindByName(ctx, a.Name)
	if err != nil {
		return nil, fmt.Errorf("looking up application %q: %w", a.Name, err)
	}

	result := newPushResult()
	payload := a.ToApplicationPayload()

	if existing == nil {
		created, err := apps.Create(ctx, payload)
		if err != nil {
			return nil, fmt.Errorf("creating application %q: %w", a.Name, err)
		}

		result.ApplicationID = created.String("id")
		result.ApplicationResponse = created

		cfg.logger.Info("Created application", map[string]interface{}{
			"name": a.Name,
			"id":   result.ApplicationID,
		})
	} else {
		existingID := existing.String("id")

		if !upsert {
			return nil, &ConfigurationError{
				Message: fmt.Sprintf("application '%s' already exists with ID %s, use upsert to update it", a.Name, existingID),
				Err:     ErrApplicationExists,
			}
		}

		warning := PushWarning{
			ApplicationID: existingID,
			Message:       fmt.Sprintf("application '%s' already exists with ID %s, updating", a.Name, existingID),
		}
		result.Warnings = append(result.Warnings, warning)

		cfg.logger.Warn(warning.Message, map[string]interface{}{
			"name": a.Name,
			"id":   existingID,
		})
		cfg.publish(ctx, PushEvent{
			Type:            PushEventUpsert,
			ApplicationID:   existingID,
			ApplicationName: a.Name,
			Message:         warning.Message,
		})

		updated, err := apps.Update(ctx, existingID, payload)
		if err != nil {
			return nil, fmt.Errorf("updating application %s: %w", existingID, err)
		}

		result.ApplicationID = existingID
		result.ApplicationResponse = updated
	}

	if result.ApplicationID == "" {
		return nil, fmt.Errorf("%w: %q", ErrMissingApplicationID, a.Name)
	}

	if err := a.reconcile(ctx, apps, result, cfg); err != nil {
		return nil, err
	}

	cfg.publish(ctx, PushEvent{
		Type:            PushEventCompleted,
		ApplicationID:   result.ApplicationID,
		ApplicationName: a.Name,
		ObjectTypes:     a.ObjectTypeIDs(),
		Uploads:         len(result.UploadResponses),
	})

	return result, nil
}

// PushTo replaces the application with the given id and reconciles its
// object types and uploads. No name lookup is performed.
func (a *DisconnectedApplication) PushTo(ctx context.Context, apps ApplicationsClient, applicationID string, opts ...PushOption) (*PushResult, error) {
	if applicationID == "" {
		return nil, fmt.Errorf("%w: %q", ErrMissingApplicationID, a.Name)
	}

	cfg := newPushConfig(opts)

	updated, err := apps.Update(ctx, applicationID, a.ToApplicationPayload())
	if err != nil {
		return nil, fmt.Errorf("updating application %s: %w", applicationID, err)
	}

	result := newPushResult()
	result.ApplicationID = applicationID
	result.ApplicationResponse = updated

	if err := a.reconcile(ctx, apps, result, cfg); err != nil {
		return nil, err
	}

	cfg.publish(ctx, PushEvent{
		Type:            PushEventCompleted,
		ApplicationID:   applicationID,
		ApplicationName: a.Name,
		ObjectTypes:     a.ObjectTypeIDs(),
		Uploads:         len(result.UploadResponses),
	})

	return result, nil
}

func (a *DisconnectedApplication) reconcile(ctx context.Context, apps ApplicationsClient, result *PushResult, cfg *pushConfig) error {
	appID := result.ApplicationID

	for _, id := range a.ObjectTypeIDs() {
		definition := a.objectTypes[id].clone()

		_, err := apps.GetObjectType(ctx, appID, id)

		switch {
		case err == nil:
			response, err := apps.UpdateObjectType(ctx, appID, id, definition)
			if err != nil {
				return fmt.Errorf("updating object type %s: %w", id, err)
			}

			result.ObjectTypeResponses[id] = response

			cfg.logger.Debug("Updated object type", map[string]interface{}{"application_id": appID, "object_type": id})
		case IsNotFound(err):
			response, err := apps.AddObjectType(ctx, appID, definition)
			if err != nil {
				return fmt.Errorf("adding object type %s: %w", id, err)
			}

			result.ObjectTypeResponses[id] = response

			cfg.logger.Debug("Added object type", map[string]interface{}{"application_id": appID, "object_type": id})
		default:
			return fmt.Errorf("getting object type %s: %w", id, err)
		}
	}

	for _, upload := range a.fileUploads {
		response, err := apps.UploadFile(ctx, appID, upload.FilePath, upload.ObjectType)
		if err != nil {
			return fmt.Errorf("uploading %s for %s: %w", upload.FilePath, upload.ObjectType, err)
		}

		result.UploadResponses = append(result.UploadResponses, response)

		cfg.logger.Info("Uploaded file", map[string]interface{}{
			"application_id": appID,
			"object_type":    upload.ObjectType,
			"file":           upload.FilePath,
			"upload_id":      response.String("id"),
		})
	}

	return nil
}

func newPushConfig(opts []PushOption) *pushConfig {
	cfg := &pushConfig{
		logger: noopLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}

	return cfg
}

func newPushResult() *PushResult {
	return &PushResult{
		ObjectTypeResponses: make(map[string]Object),
		UploadResponses:     []Object{},
	}
}

// publish delivers an event. Delivery failures are logged and never fail
// the push.
func (c *pushConfig) publish(ctx context.Context, event PushEvent) {
	if c.publisher == nil {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = c.now().UTC()
	}

	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("Failed to publish push event", map[string]interface{}{
			"type":  string(event.Type),
			"error": err.Error(),
		})
	}
}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}
