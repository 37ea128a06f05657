// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"github.com/pdiddy/wikicite/internal/schema"
	"github.com/pdiddy/wikicite/internal/wikitext"
)

// FindReuses returns the self-closing tags in doc named name, in document
// order. Every call re-scans doc.
func FindReuses(reg *schema.Registry, doc, name string) []*Reference {
	if name == "" {
		return nil
	}
	return filterReferences(reg, doc, func(r *Reference) bool {
		return r.Role() == RoleReuse && r.Name == name
	})
}

// FindSubrefs returns the tags in doc that extend name, in document order.
// Every call re-scans doc.
func FindSubrefs(reg *schema.Registry, doc, name string) []*Reference {
	if name == "" {
		return nil
	}
	return filterReferences(reg, doc, func(r *Reference) bool {
		return r.Extends == name
	})
}

func filterReferences(reg *schema.Registry, doc string, keep func(*Reference) bool) []*Reference {
	var refs []*Reference
	for _, s := range wikitext.FindReferences(doc) {
		r := NewReference(reg, s.Text, s.Start)
		if keep(r) {
			refs = append(refs, r)
		}
	}
	return refs
}

// Resolve binds the reuses and subrefs of r found in doc. Only named,
// content-bearing references have dependents; a reuse never finds itself.
func (r *Reference) Resolve(doc string) {
	r.Reuses, r.Subrefs = nil, nil
	if r.Name == "" || r.Role() == RoleReuse {
		return
	}
	r.Reuses = FindReuses(r.reg, doc, r.Name)
	r.Subrefs = FindSubrefs(r.reg, doc, r.Name)
}
