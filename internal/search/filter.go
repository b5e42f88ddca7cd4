package search

import "tray-kanban/internal/model"

// Filter tracks the live query and which ticket ids it currently shows.
//
// Incremental changes re-test only the affected id against the live query;
// SetQuery and Reset recompute the whole visible set.
type Filter struct {
	index   *Index
	query   string
	visible map[string]struct{}
}

func NewFilter(maxDistance int) *Filter {
	return &Filter{
		index:   NewIndex(maxDistance),
		visible: map[string]struct{}{},
	}
}

func (f *Filter) Index() *Index { return f.index }

func (f *Filter) Query() string { return f.query }

func (f *Filter) Filtered() bool { return f.query != "" }

func (f *Filter) SetQuery(q string) {
	f.query = q
	f.recompute()
}

func (f *Filter) Visible(id string) bool {
	_, ok := f.visible[id]
	return ok
}

// VisibleIDs returns the sorted visible ids.
func (f *Filter) VisibleIDs() []string {
	if !f.Filtered() {
		return f.index.IDs()
	}
	return f.index.Search(f.query)
}

func (f *Filter) Add(t model.Ticket) {
	f.index.Insert(t.Name, t.TicketID)
	f.retest(t.TicketID, t.Name)
}

func (f *Filter) Update(t model.Ticket) {
	f.index.Update(t.TicketID, t.Name)
	f.retest(t.TicketID, t.Name)
}

func (f *Filter) Remove(id string) {
	f.index.Remove(id)
	delete(f.visible, id)
}

func (f *Filter) Reset(tickets []model.Ticket) {
	f.index.Reset(tickets)
	f.recompute()
}

func (f *Filter) retest(id, text string) {
	if f.index.Matches(text, f.query) {
		f.visible[id] = struct{}{}
		return
	}
	delete(f.visible, id)
}

func (f *Filter) recompute() {
	ids := f.index.Search(f.query)
	f.visible = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		f.visible[id] = struct{}{}
	}
}
