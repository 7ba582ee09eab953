package widget

import (
	"context"
	"sync/atomic"

	"github.com/amoylab/coursechat/internal/common/cnst"
	"github.com/amoylab/coursechat/internal/common/errorx"
)

// Choice is a single-use offer to show one kind of content
type Choice struct {
	id    uint64
	kind  cnst.ContentKind
	tag   string
	label string
	used  atomic.Bool
	c     *Controller
}

func (ch *Choice) ID() uint64             { return ch.id }
func (ch *Choice) Kind() cnst.ContentKind { return ch.kind }
func (ch *Choice) Tag() string            { return ch.tag }
func (ch *Choice) Label() string          { return ch.label }
func (ch *Choice) Used() bool             { return ch.used.Load() }

// Activate disables the choice and starts loading its content. A second
// activation returns errorx.ErrChoiceUsed.
func (ch *Choice) Activate(ctx context.Context) (*Pending, error) {
	if !ch.used.CompareAndSwap(false, true) {
		return nil, errorx.ErrChoiceUsed
	}
	ch.c.view.DisableChoice(ch.id)
	return ch.c.ShowMedia(ctx, ch.kind, ch.tag), nil
}
