// Package apperr définit les erreurs typées remontées par les services métier.
// Les handlers HTTP traduisent chaque Kind en code de statut via un seul helper.
package apperr

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindUpstream Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindForbidden
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "upstream"
	}
}

// Error porte un message destiné au client et, pour les pannes d'infrastructure,
// l'erreur d'origine qui ne doit apparaître que dans les logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is compare la catégorie et le message, ce qui permet d'utiliser des
// sentinelles déclarées dans chaque package métier.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func NotFound(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }
func Forbidden(msg string) *Error  { return &Error{Kind: KindForbidden, Message: msg} }

func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

// Upstream enveloppe une panne de stockage ou d'un service tiers.
func Upstream(op string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: "Error en el servidor", Err: errors.Wrap(err, op)}
}

// KindOf retourne la catégorie d'une erreur ; toute erreur non typée est une panne.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUpstream
}

// Message retourne le message public d'une erreur.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindUpstream {
		return appErr.Message
	}
	return "Error en el servidor"
}

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
