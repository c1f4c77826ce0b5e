package session

import (
	"context"
	"encoding/gob"

	"github.com/alexedwards/scs/v2"
)

const (
	noticesKey = "notices"
	promptKey  = "prompt"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notice is a transient message shown once on the next rendered page.
type Notice struct {
	Title       string
	Description string
	Variant     Variant
}

// Modal names an auth dialog the next page should open.
type Modal string

const (
	ModalLogin  Modal = "login"
	ModalSignup Modal = "signup"
)

type Notices struct {
	impl *scs.SessionManager
}

func NewNotices(sm *scs.SessionManager) *Notices {
	gob.Register([]Notice{})
	return &Notices{impl: sm}
}

func (n *Notices) Add(ctx context.Context, notice Notice) {
	if notice.Variant == "" {
		notice.Variant = VariantDefault
	}
	pending, _ := n.impl.Get(ctx, noticesKey).([]Notice)
	n.impl.Put(ctx, noticesKey, append(pending, notice))
}

func (n *Notices) Pop(ctx context.Context) []Notice {
	pending, _ := n.impl.Pop(ctx, noticesKey).([]Notice)
	return pending
}

func (n *Notices) Prompt(ctx context.Context, m Modal) {
	n.impl.Put(ctx, promptKey, string(m))
}

func (n *Notices) PopPrompt(ctx context.Context) Modal {
	return Modal(n.impl.PopString(ctx, promptKey))
}
