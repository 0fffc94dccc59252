package board

import "errors"

var (
	ErrNotConfirmed    = errors.New("delete not confirmed")
	ErrInvalidStatus   = errors.New("invalid appointment status")
	ErrInvalidID       = errors.New("invalid appointment id")
	ErrUnknownEmployee = errors.New("employee is not on this salon's staff")
)

// Messages shown to the operator.
const (
	MsgEmpty         = "Aucun rendez-vous trouvé."
	MsgFailed        = "Impossible de charger les rendez-vous. Veuillez réessayer."
	MsgActionFailed  = "Une erreur est survenue. Veuillez réessayer."
	MsgConfirmDelete = "Supprimer ce rendez-vous ?"
)
