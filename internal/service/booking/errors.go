package booking

import "errors"

var (
	ErrSessionNotFound  = errors.New("booking session not found or expired")
	ErrSubmitInFlight   = errors.New("booking submission already in progress")
	ErrAlreadySubmitted = errors.New("booking already submitted")
	ErrInvalidForm      = errors.New("booking form has errors")
	ErrRejected         = errors.New("booking rejected by the backend")
)

// Messages shown to the visitor.
const (
	MsgRequired       = "Champ requis"
	MsgInvalidPhone   = "Numéro invalide"
	MsgInvalidEmail   = "Email invalide"
	MsgInvalidDate    = "Date invalide"
	MsgPastDate       = "La date est déjà passée"
	MsgInvalidTime    = "Heure invalide"
	MsgUnknownOption  = "Choix invalide"
	MsgNotesTooLong   = "Texte trop long"
	MsgGenericFailure = "Une erreur est survenue. Veuillez réessayer."
)
