package model

import "time"

type TagColor string

const (
	TagGreen  TagColor = "green"
	TagPurple TagColor = "purple"
	TagBlue   TagColor = "blue"
)

type Tag struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Color TagColor `json:"color"`
}

type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Ticket is a card on the board. TicketID never changes once the ticket exists.
type Ticket struct {
	TicketID    string       `json:"ticketId"`
	Name        string       `json:"name"`
	Number      string       `json:"number"`
	Tags        []Tag        `json:"tags"`
	Summary     *string      `json:"summary,omitempty"`
	Attachments []Attachment `json:"attachments"`
}

// Group is a ticket numbering namespace (e.g. "ENG" -> ENG-1, ENG-2, ...).
type Group struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Prefix           string `json:"prefix"`
	NextTicketNumber int    `json:"nextTicketNumber"`
}

type Column struct {
	ColumnID string   `json:"columnId"`
	Title    string   `json:"title"`
	Items    []Ticket `json:"items"`
}

func (c Column) IndexOf(ticketID string) int {
	for i := range c.Items {
		if c.Items[i].TicketID == ticketID {
			return i
		}
	}
	return -1
}

type Trigger string

const (
	TriggerPointer  Trigger = "pointer"
	TriggerKeyboard Trigger = "keyboard"
	TriggerUndo     Trigger = "undo"
)

type OutcomeType string

const (
	OutcomeColumnReorder OutcomeType = "column-reorder"
	OutcomeCardReorder   OutcomeType = "card-reorder"
	OutcomeCardMove      OutcomeType = "card-move"
	OutcomeCardAdd       OutcomeType = "card-add"
	OutcomeCardUpdate    OutcomeType = "card-update"
	OutcomeCardDelete    OutcomeType = "card-delete"
)

// Outcome describes exactly what one mutation did. Only the fields relevant
// to Type are set:
//
//	column-reorder: ColumnID, StartIndex, FinishIndex
//	card-reorder:   ColumnID, TicketID, StartIndex, FinishIndex
//	card-move:      StartColumnID, FinishColumnID, ItemIndexInStartColumn, ItemIndexInFinishColumn, TicketID
//	card-add:       ColumnID, Ticket
//	card-update:    ColumnID, TicketID, Ticket (new value), PreviousTicket
//	card-delete:    ColumnID, TicketID, Ticket (deleted value), DeletedIndex
type Outcome struct {
	Type OutcomeType `json:"type"`

	ColumnID string `json:"columnId,omitempty"`
	TicketID string `json:"ticketId,omitempty"`

	StartIndex  int `json:"startIndex"`
	FinishIndex int `json:"finishIndex"`

	StartColumnID           string `json:"startColumnId,omitempty"`
	FinishColumnID          string `json:"finishColumnId,omitempty"`
	ItemIndexInStartColumn  int    `json:"itemIndexInStartColumn"`
	ItemIndexInFinishColumn int    `json:"itemIndexInFinishColumn"`

	Ticket         *Ticket `json:"ticket,omitempty"`
	PreviousTicket *Ticket `json:"previousTicket,omitempty"`
	DeletedIndex   int     `json:"deletedIndex"`
}

type Operation struct {
	Outcome Outcome `json:"outcome"`
	Trigger Trigger `json:"trigger"`
}

type HistoryEntry struct {
	State     BoardState `json:"state"`
	Timestamp time.Time  `json:"timestamp"`
}
