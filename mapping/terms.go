package mapping

import (
	"github.com/c360studio/semrdf/entity"
	"github.com/c360studio/semrdf/export"
	"github.com/c360studio/semrdf/vocabulary"
)

// TermsMapper writes labels, descriptions and aliases.
type TermsMapper struct {
	vocab     *vocabulary.Vocabulary
	w         export.Writer
	languages map[string]bool
}

// NewTermsMapper creates a TermsMapper. When languages is not empty only
// terms in those languages are written.
func NewTermsMapper(v *vocabulary.Vocabulary, w export.Writer, languages []string) *TermsMapper {
	m := &TermsMapper{vocab: v, w: w}
	if len(languages) > 0 {
		m.languages = make(map[string]bool, len(languages))
		for _, lang := range languages {
			m.languages[lang] = true
		}
	}
	return m
}

func (m *TermsMapper) wanted(lang string) bool {
	return m.languages == nil || m.languages[lang]
}

func (m *TermsMapper) about(id entity.ID) export.Writer {
	return m.w.About(m.vocab.EntityNamespaceName(id), m.vocab.EntityLName(id))
}

// AddTerms writes all terms of fp.
func (m *TermsMapper) AddTerms(id entity.ID, fp *entity.Fingerprint) {
	if fp == nil {
		return
	}
	m.AddLabels(id, fp.Labels)
	m.AddDescriptions(id, fp.Descriptions)
	m.AddAliases(id, fp.Aliases)
}

// AddLabels writes each label as rdfs:label, skos:prefLabel and schema:name.
func (m *TermsMapper) AddLabels(id entity.ID, labels entity.TermList) {
	for _, lang := range labels.Languages() {
		if !m.wanted(lang) {
			continue
		}
		text := labels[lang]
		m.about(id).
			Say(vocabulary.NSRDFS, "label").Text(text, lang).
			Say(vocabulary.NSSKOS, "prefLabel").Text(text, lang).
			Say(vocabulary.NSSchemaOrg, "name").Text(text, lang)
	}
}

// AddDescriptions writes schema:description.
func (m *TermsMapper) AddDescriptions(id entity.ID, descriptions entity.TermList) {
	for _, lang := range descriptions.Languages() {
		if !m.wanted(lang) {
			continue
		}
		m.about(id).Say(vocabulary.NSSchemaOrg, "description").Text(descriptions[lang], lang)
	}
}

// AddAliases writes skos:altLabel. Empty groups write nothing.
func (m *TermsMapper) AddAliases(id entity.ID, aliases entity.AliasGroupList) {
	for _, lang := range aliases.Languages() {
		if !m.wanted(lang) || len(aliases[lang]) == 0 {
			continue
		}
		m.about(id).Say(vocabulary.NSSKOS, "altLabel")
		for _, alias := range aliases[lang] {
			m.w.Text(alias, lang)
		}
	}
}
