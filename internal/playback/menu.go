package playback

import (
	"context"
	"fmt"

	"github.com/dgnsrekt/kikitori/internal/cache"
	"github.com/dgnsrekt/kikitori/internal/sources"
	"golang.org/x/sync/errgroup"
)

// Menu returns the audio menu rows of a headword, one group per source.
// Sources that were never discovered show a single row of unknown validity.
func (c *Controller) Menu(entryIndex, headwordIndex int) []MenuSource {
	hw, ok := c.Headword(entryIndex, headwordIndex)
	if !ok {
		return nil
	}
	key := hw.Key()
	primary := c.cache.Primary(key)

	list := c.Sources()
	out := make([]MenuSource, 0, len(list))
	for _, source := range list {
		items := menuItems(c.cache, key, source)
		for i := range items {
			items[i].Label = menuLabel(source, items[i], len(items), i)
			items[i].IsPrimary = primary != nil &&
				primary.Index == source.Index && primary.SubIndex == items[i].Index
		}
		out = append(out, MenuSource{Source: source, Items: items})
	}
	return out
}

// Discover lists the candidates of every source for a headword without
// resolving any audio, so the menu can show them before the first play.
func (c *Controller) Discover(ctx context.Context, entryIndex, headwordIndex int) error {
	hw, ok := c.Headword(entryIndex, headwordIndex)
	if !ok {
		return nil
	}
	key := hw.Key()
	c.cache.GetOrCreateEntry(key)

	g, ctx := errgroup.WithContext(ctx)
	for _, source := range c.Sources() {
		g.Go(func() error {
			_, err := c.cache.ResolveInfoList(ctx, key, source)
			return err
		})
	}
	return g.Wait()
}

func menuItems(r *cache.Resolution, key cache.Key, source sources.AudioSource) []MenuItem {
	states, discovered := r.SourceItems(key, source.Index)
	if !discovered {
		return []MenuItem{{Valid: cache.ValidityUnknown, Index: cache.NoSubIndex}}
	}
	if len(states) == 0 {
		return []MenuItem{{Valid: cache.ValidityInvalid, Index: cache.NoSubIndex}}
	}
	items := make([]MenuItem, len(states))
	for i, s := range states {
		items[i] = MenuItem{Valid: s.Validity(), Index: i, Name: s.Info.DisplayName()}
		if u, ok := s.Info.(sources.URLInfo); ok {
			items[i].URL = u.URL
		}
	}
	return items
}

func menuLabel(source sources.AudioSource, item MenuItem, count, i int) string {
	label := source.Name
	if !source.NameUnique {
		label = fmt.Sprintf("%s %d", label, source.NameIndex+1)
		if count > 1 {
			label += " -"
		}
	}
	if count > 1 {
		label = fmt.Sprintf("%s %d", label, i+1)
	}
	if item.Name != "" {
		label += ": " + item.Name
	}
	return label
}
