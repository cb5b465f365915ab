package flow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/drip/internal/domain"
)

var (
	ErrInvalidConnection     = errors.New("invalid connection")
	ErrDisconnectedGraph     = errors.New("cannot save: some nodes are not connected to start")
	ErrMissingEmail          = errors.New("cannot save: must have at least one email on trigger")
	ErrConditionWithoutEmail = errors.New("cannot save: a condition must follow an email in its branch")
	ErrCyclicFlow            = errors.New("cannot save: the flow loops back on itself")
)

// ConnectionError reports which connection rule a proposed edge violates.
type ConnectionError struct {
	Source  domain.NodeKind
	Target  domain.NodeKind
	Allowed []domain.NodeKind
}

func (e *ConnectionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("%s node cannot start a connection", article(e.Source))
	}
	return fmt.Sprintf("%s node can only connect to %s node", article(e.Source), joinKinds(e.Allowed))
}

func (e *ConnectionError) Unwrap() error { return ErrInvalidConnection }

// DisconnectedError lists the nodes that block a publish.
type DisconnectedError struct {
	NodeIDs []string
}

func (e *DisconnectedError) Error() string {
	return fmt.Sprintf("%s (%s)", ErrDisconnectedGraph.Error(), strings.Join(e.NodeIDs, ", "))
}

func (e *DisconnectedError) Unwrap() error { return ErrDisconnectedGraph }

func article(k domain.NodeKind) string {
	return indefinite(k, fmt.Sprintf("%q", string(k)))
}

// joinKinds renders `an "email", "condition" or "delay"`.
func joinKinds(kinds []domain.NodeKind) string {
	quoted := make([]string, len(kinds))
	for i, k := range kinds {
		quoted[i] = fmt.Sprintf("%q", string(k))
	}
	body := quoted[0]
	if len(quoted) > 1 {
		body = strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
	}
	return indefinite(kinds[0], body)
}

func indefinite(first domain.NodeKind, body string) string {
	if k := string(first); k != "" && strings.ContainsRune("aeiou", rune(k[0])) {
		return "an " + body
	}
	return "a " + body
}
