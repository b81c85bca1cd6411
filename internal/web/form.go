package web

import (
	"github.com/kapu/chzzk-recorder-panel/internal/domain"
)

// ConfigForm holds the server's last config document plus any staged edits.
// A staged section keeps its draft across background repopulation until it
// is saved or discarded.
type ConfigForm struct {
	server domain.ConfigDocument
	drafts map[string]domain.ConfigSection
}

func NewConfigForm() *ConfigForm {
	return &ConfigForm{
		server: domain.ConfigDocument{},
		drafts: make(map[string]domain.ConfigSection),
	}
}

// Populate takes a fresh server document and returns the sections whose
// display was left alone because they hold staged edits.
func (f *ConfigForm) Populate(doc domain.ConfigDocument) []string {
	var kept []string
	for _, spec := range domain.ConfigSchema {
		if _, dirty := f.drafts[spec.Name]; dirty {
			kept = append(kept, spec.Name)
		}
	}
	server := make(domain.ConfigDocument, len(doc))
	for name, section := range doc {
		server[name] = section.Clone()
	}
	f.server = server
	return kept
}

func (f *ConfigForm) Stage(section string, values domain.ConfigSection) {
	f.drafts[section] = values.Clone()
}

// Commit echoes a successfully saved section into the server view and clears its draft.
func (f *ConfigForm) Commit(section string, values domain.ConfigSection) {
	f.server[section] = values.Clone()
	delete(f.drafts, section)
}

func (f *ConfigForm) Discard(section string) {
	delete(f.drafts, section)
}

func (f *ConfigForm) IsDirty(section string) bool {
	_, ok := f.drafts[section]
	return ok
}

func (f *ConfigForm) Dirty() map[string]bool {
	out := make(map[string]bool, len(f.drafts))
	for name := range f.drafts {
		out[name] = true
	}
	return out
}

// Display returns what the form shows: drafts over server values.
func (f *ConfigForm) Display() domain.ConfigDocument {
	out := make(domain.ConfigDocument, len(f.server)+len(f.drafts))
	for name, section := range f.server {
		out[name] = section
	}
	for name, section := range f.drafts {
		out[name] = section
	}
	return out
}
