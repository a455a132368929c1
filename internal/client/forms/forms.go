// Package forms runs the create, edit and delete flows of the back office:
// check the input, call the backend, tell the user how it went and let the
// owning lists know they are stale.
package forms

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/backoffice/internal/client/api"
	"github.com/dmitrijs2005/backoffice/internal/client/list"
	"github.com/dmitrijs2005/backoffice/internal/client/ui"
	"github.com/dmitrijs2005/backoffice/internal/logging"
	"github.com/dmitrijs2005/backoffice/internal/validation"
)

var (
	ErrInvalid  = errors.New("invalid input")
	ErrDeclined = errors.New("cancelled by user")
)

// InvalidError carries the fields that failed client-side validation.
type InvalidError struct {
	Fields validation.Fields
}

func (e *InvalidError) Error() string { return "invalid input: " + strings.Join(e.Messages(), "; ") }

func (e *InvalidError) Unwrap() error { return ErrInvalid }

// Messages returns sorted "field: message" lines.
func (e *InvalidError) Messages() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []string
	for _, k := range keys {
		for _, m := range e.Fields[k] {
			out = append(out, k+": "+m)
		}
	}
	return out
}

// Kit is what every flow needs from the front end.
type Kit struct {
	Toaster   ui.Toaster
	Confirmer ui.Confirmer
	Bus       *list.Bus
	Logger    logging.Logger
}

func (k Kit) logger() logging.Logger {
	if k.Logger == nil {
		return logging.Nop()
	}
	return k.Logger
}

func (k Kit) succeeded(resource, msg string) {
	k.Toaster.Toast(ui.Success, msg)
	if k.Bus != nil {
		k.Bus.Publish(resource)
	}
}

// failed shows err to the user. Validation errors list each field.
func (k Kit) failed(ctx context.Context, resource string, err error) {
	k.logger().Warn(ctx, "mutation failed", "resource", resource, "error", err)
	var inv *InvalidError
	if errors.As(err, &inv) {
		k.Toaster.Toast(ui.Failure, strings.Join(append([]string{"Please fix the following:"}, inv.Messages()...), "\n"))
		return
	}
	k.Toaster.Toast(ui.Failure, api.Describe(err))
}

// Flow is one create or edit form. In is validated with its struct tags
// before Submit is called.
type Flow[In any, Out any] struct {
	Kit      Kit
	Resource string
	Success  string
	Submit   func(ctx context.Context, in In) (Out, error)
}

func (f Flow[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	var zero Out
	if fields := validation.Struct(in); len(fields) > 0 {
		err := &InvalidError{Fields: fields}
		f.Kit.failed(ctx, f.Resource, err)
		return zero, err
	}

	out, err := f.Submit(ctx, in)
	if err != nil {
		f.Kit.failed(ctx, f.Resource, err)
		return zero, err
	}
	f.Kit.succeeded(f.Resource, f.Success)
	return out, nil
}

// Action runs a mutation that has no form, such as approving a quotation.
func Action(ctx context.Context, kit Kit, resource, success string, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		kit.failed(ctx, resource, err)
		return err
	}
	kit.succeeded(resource, success)
	return nil
}

// Delete asks for confirmation and only then calls del. A declined prompt
// returns ErrDeclined without touching the backend.
func Delete(ctx context.Context, kit Kit, resource string, id int64, del func(ctx context.Context, id int64) error) error {
	if !kit.Confirmer.Confirm(fmt.Sprintf("Delete %s #%d?", resource, id)) {
		kit.Toaster.Toast(ui.Info, "Delete cancelled.")
		return ErrDeclined
	}
	return Action(ctx, kit, resource, "Deleted successfully.", func(ctx context.Context) error {
		return del(ctx, id)
	})
}
