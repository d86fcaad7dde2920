// Package flash carries one-shot notices across a redirect, backed by the
// cookie session store. Each notice is tagged with a severity kind and is
// consumed on the first read.
package flash

import (
	"encoding/gob"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	KindDanger  = "danger"
	KindWarning = "warning"
	KindSuccess = "success"
)

type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func init() {
	gob.Register(Notice{})
}

func Set(ctx *gin.Context, kind, message string) {
	session := sessions.Default(ctx)
	session.AddFlash(Notice{Kind: kind, Message: message})
	_ = session.Save()
}

// Take returns all pending notices and clears them from the session.
func Take(ctx *gin.Context) []Notice {
	session := sessions.Default(ctx)

	raw := session.Flashes()

	if len(raw) > 0 {
		_ = session.Save()
	}

	notices := make([]Notice, 0, len(raw))

	for _, entry := range raw {
		if notice, ok := entry.(Notice); ok {
			notices = append(notices, notice)
		}
	}

	return notices
}
