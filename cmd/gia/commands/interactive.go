package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fivetwenty-io/gia/pkg/iga"
)

var errInputClosed = errors.New("input closed before all answers were given")

var propertyTypes = []string{"string", "number", "boolean", "array", "object"}

// Prompter asks questions on a line-oriented terminal.
type Prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(in), out: out}
}

// readLine returns the next trimmed line. io.EOF is only returned when no
// input is left at all.
func (p *Prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}

	if errors.Is(err, io.EOF) && line == "" {
		return "", io.EOF
	}

	return strings.TrimSpace(line), nil
}

// Ask prompts for a value. An empty answer or closed input yields def.
func (p *Prompter) Ask(label, def string) (string, error) {
	if def != "" {
		_, _ = fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		_, _ = fmt.Fprintf(p.out, "%s: ", label)
	}

	answer, err := p.readLine()
	if errors.Is(err, io.EOF) {
		return def, nil
	}

	if err != nil {
		return "", err
	}

	if answer == "" {
		return def, nil
	}

	return answer, nil
}

// AskRequired prompts until a non-empty value is given.
func (p *Prompter) AskRequired(label string) (string, error) {
	for {
		_, _ = fmt.Fprintf(p.out, "%s: ", label)

		answer, err := p.readLine()
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%s: %w", label, errInputClosed)
		}

		if err != nil {
			return "", err
		}

		if answer != "" {
			return answer, nil
		}
	}
}

// Choose prompts until one of choices (or def on an empty answer) is given.
func (p *Prompter) Choose(label string, choices []string, def string) (string, error) {
	for {
		answer, err := p.Ask(fmt.Sprintf("%s (%s)", label, strings.Join(choices, ", ")), def)
		if err != nil {
			return "", err
		}

		for _, choice := range choices {
			if strings.EqualFold(answer, choice) {
				return choice, nil
			}
		}

		if answer == "" {
			return "", fmt.Errorf("%s: %w", label, errInputClosed)
		}

		_, _ = fmt.Fprintf(p.out, "Invalid choice %q\n", answer)
	}
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}

	_, _ = fmt.Fprintf(p.out, "%s [%s]: ", label, hint)

	answer, err := p.readLine()
	if errors.Is(err, io.EOF) {
		return def, nil
	}

	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// InteractiveBuilder guides the user through defining an application.
type InteractiveBuilder struct {
	prompter *Prompter
}

// NewInteractiveBuilder creates a builder reading answers from in.
func NewInteractiveBuilder(in io.Reader, out io.Writer) *InteractiveBuilder {
	return &InteractiveBuilder{prompter: NewPrompter(in, out)}
}

// Build prompts for the application, its object types and their properties.
func (b *InteractiveBuilder) Build() (*iga.DisconnectedApplication, error) {
	p := b.prompter

	_, _ = fmt.Fprintln(p.out, "\nInteractive Application Builder")

	name, err := p.AskRequired("Application name")
	if err != nil {
		return nil, err
	}

	description, err := p.Ask("Application description", "")
	if err != nil {
		return nil, err
	}

	app := iga.NewDisconnectedApplication(name, iga.WithDescription(description))

	addTypes, err := p.Confirm("Add object types?", true)
	if err != nil {
		return nil, err
	}

	for addTypes {
		err = b.addObjectType(app)
		if err != nil {
			return nil, err
		}

		addTypes, err = p.Confirm("Add another object type?", false)
		if err != nil {
			return nil, err
		}
	}

	_, _ = fmt.Fprintf(p.out, "\nApplication '%s' configured with %d object type(s)\n", name, len(app.ObjectTypes()))

	return app, nil
}

func (b *InteractiveBuilder) addObjectType(app *iga.DisconnectedApplication) error {
	p := b.prompter

	id, err := p.AskRequired("Object type ID (e.g., __ACCOUNT__)")
	if err != nil {
		return err
	}

	kind, err := p.Choose("Object type", []string{string(iga.ObjectKindAccount), string(iga.ObjectKindResource)}, string(iga.ObjectKindAccount))
	if err != nil {
		return err
	}

	properties := make(map[string]interface{})

	addProperties, err := p.Confirm("Add properties?", true)
	if err != nil {
		return err
	}

	if addProperties {
		_, _ = fmt.Fprintln(p.out, "Enter properties. Leave the name blank to finish.")

		for {
			propertyName, err := p.Ask("Property name", "")
			if err != nil {
				return err
			}

			if propertyName == "" {
				break
			}

			propertyType, err := p.Choose("Property type", propertyTypes, "string")
			if err != nil {
				return err
			}

			properties[propertyName] = map[string]interface{}{"type": propertyType}
		}
	}

	_, err = app.AddObjectType(id, iga.ObjectKind(kind), properties)
	if err != nil {
		_, _ = fmt.Fprintf(p.out, "Skipped: %v\n", err)

		return nil
	}

	printSuccess(p.out, "Added object type '%s'", id)

	return nil
}
