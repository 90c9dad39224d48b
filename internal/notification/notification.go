// Package notification sends push messages to users' devices.
package notification

import (
	"fmt"
	"strconv"
)

type Kind string

const (
	KindChoresReset Kind = "chores_reset"
)

// Push is one message for every device a user registered.
type Push struct {
	Title string
	Body  string
	Data  map[string]string
}

// ChoresReset tells a user how many of their chores are open again.
func ChoresReset(names []string) Push {
	n := len(names)

	body := fmt.Sprintf("%d chores are ready again.", n)
	if n == 1 {
		body = fmt.Sprintf("%q is ready again.", names[0])
	}

	return Push{
		Title: "Fresh start",
		Body:  body,
		Data: map[string]string{
			"type":  string(KindChoresReset),
			"count": strconv.Itoa(n),
		},
	}
}
