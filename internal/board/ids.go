package board

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tray-kanban/internal/model"
)

func NewTicketID() string {
	return uuid.NewString()
}

// NewTicket builds a fresh ticket. number is rendered as PREFIX-n when a
// prefix is given.
func NewTicket(name, prefix string, number int, tags []model.Tag) model.Ticket {
	num := ""
	prefix = strings.TrimSpace(prefix)
	switch {
	case prefix != "" && number > 0:
		num = fmt.Sprintf("%s-%d", strings.ToUpper(prefix), number)
	case number > 0:
		num = fmt.Sprintf("%d", number)
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	return model.Ticket{
		TicketID:    NewTicketID(),
		Name:        strings.TrimSpace(name),
		Number:      num,
		Tags:        tags,
		Attachments: []model.Attachment{},
	}
}
