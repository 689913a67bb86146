package rdfbuilder

import (
	"context"
	"fmt"

	"github.com/c360studio/semrdf/entity"
	"github.com/c360studio/semrdf/vocabulary"
)

// RevisionLookup reports the latest revision state of an entity. It must
// not have side effects visible to the builder.
type RevisionLookup interface {
	LatestRevision(ctx context.Context, id entity.ID) (entity.LookupResult, error)
}

// ResolveMentionedEntities writes a stub or redirect for every entity that
// was mentioned but not written. Passes repeat while a pass finds a
// redirect, since redirect targets become new mentions.
//
// Entities that do not exist, and entities whose lookup fails, are left
// unresolved and produce no output. Only writer failures and context
// cancellation are returned.
func (b *Builder) ResolveMentionedEntities(ctx context.Context) error {
	if err := b.checkStarted(); err != nil {
		return err
	}
	if b.lookup == nil {
		b.logger.Debug("No revision lookup, skipping mention resolution", "unresolved", b.mentions.UnresolvedCount())
		return nil
	}

	for pass := 1; ; pass++ {
		if b.maxPasses > 0 && pass > b.maxPasses {
			b.logger.Warn("Stopped resolving mentions at pass limit",
				"max_passes", b.maxPasses,
				"unresolved", b.mentions.UnresolvedCount())
			return nil
		}
		b.observer.ResolvePass()

		hasRedirect, err := b.resolvePass(ctx)
		if err != nil {
			return err
		}
		if !hasRedirect {
			return nil
		}
		b.logger.Debug("Redirects found, repeating resolve pass", "pass", pass)
	}
}

func (b *Builder) resolvePass(ctx context.Context) (bool, error) {
	hasRedirect := false
	for id := range b.mentions.Unresolved() {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		res, err := b.lookup.LatestRevision(ctx, id)
		if err != nil {
			b.logger.Debug("Revision lookup failed, leaving mention unresolved", "entity_id", id.Serialization(), "error", err)
			b.observer.MentionSkipped()
			continue
		}

		switch res.Kind() {
		case entity.LookupConcrete:
			if err := b.addEntityStub(ctx, id); err != nil {
				return false, err
			}
		case entity.LookupRedirect:
			b.addEntityRedirect(id, res.Target())
			hasRedirect = true
		default:
			b.observer.MentionSkipped()
			continue
		}

		if err := b.sinkErr("resolve " + id.Serialization()); err != nil {
			return false, err
		}
	}
	return hasRedirect, nil
}

// AddEntityStub writes the metadata and labels of id and marks it resolved.
func (b *Builder) AddEntityStub(ctx context.Context, id entity.ID) error {
	if err := b.checkStarted(); err != nil {
		return err
	}
	if err := b.addEntityStub(ctx, id); err != nil {
		return err
	}
	return b.sinkErr("add stub " + id.Serialization())
}

func (b *Builder) addEntityStub(ctx context.Context, id entity.ID) error {
	b.addEntityMetaData(id)
	if m, ok := b.stubs[id.Type()]; ok {
		if err := m.AddEntityStub(ctx, id); err != nil {
			return fmt.Errorf("add stub %s: %w", id, err)
		}
	}
	b.mentions.MarkResolved(id)
	b.observer.StubAdded(id.Type())
	return nil
}

// AddEntityRedirect declares from to be the same as to. from is marked
// resolved; to is mentioned when ProduceResolvedEntities is set.
func (b *Builder) AddEntityRedirect(from, to entity.ID) error {
	if err := b.checkStarted(); err != nil {
		return err
	}
	b.addEntityRedirect(from, to)
	return b.sinkErr("add redirect " + from.Serialization())
}

func (b *Builder) addEntityRedirect(from, to entity.ID) {
	b.writer.About(b.vocab.EntityNamespaceName(from), b.vocab.EntityLName(from)).
		Say(vocabulary.NSOWL, "sameAs").
		Is(b.vocab.EntityNamespaceName(to), b.vocab.EntityLName(to))

	b.mentions.MarkResolved(from)
	b.mentions.RecordRedirect(from, to)
	if b.flavor.Has(ProduceResolvedEntities) {
		b.mentions.MarkMentioned(to)
	}
	b.observer.RedirectAdded()
}
