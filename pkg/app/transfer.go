package app

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/quicklog/pkg/archive"
	"tableflip.dev/quicklog/pkg/csvio"
	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/store"
	"tableflip.dev/quicklog/pkg/tag"
)

// DefaultLocationTag labels imported location rows that carry no tags.
const DefaultLocationTag = "Location"

// ExportEntries renders the entries matching f as an entry log.
func (s *Service) ExportEntries(ctx context.Context, f Filter) (string, error) {
	entries, err := s.Search(ctx, f)
	if err != nil {
		return "", err
	}
	return csvio.EncodeEntries(entries), nil
}

// ExportTags renders the whole catalog with its links.
func (s *Service) ExportTags(ctx context.Context) (string, error) {
	if s.Tags == nil {
		return "", errNoTags
	}
	tags, err := s.Tags.ListAll(ctx)
	if err != nil {
		return "", err
	}
	links, err := s.Tags.Links(ctx)
	if err != nil {
		return "", err
	}
	return csvio.EncodeTags(tags, links), nil
}

// ExportLocations renders the located entries created in [since, until].
func (s *Service) ExportLocations(ctx context.Context, since, until time.Time) (string, error) {
	entries, err := s.Search(ctx, Filter{Since: since, Until: until})
	if err != nil {
		return "", err
	}
	return csvio.EncodeLocations(entries), nil
}

// ExportLocationsJSON is ExportLocations as a JSON document.
func (s *Service) ExportLocationsJSON(ctx context.Context, since, until time.Time) (string, error) {
	entries, err := s.Search(ctx, Filter{Since: since, Until: until})
	if err != nil {
		return "", err
	}
	return csvio.EncodeLocationsJSON(entries, s.now())
}

// ImportTags stores a tag catalog in one transaction and returns the number
// of tag rows read.
func (s *Service) ImportTags(ctx context.Context, text string) (int, error) {
	if s.Tags == nil {
		return 0, errNoTags
	}
	batch, skipped := csvio.DecodeTags(text, tag.ImportID)
	s.reportSkipped("tags", skipped)
	if len(batch.Tags) == 0 {
		return 0, nil
	}
	if err := s.Tags.Import(ctx, batch.Tags, batch.Links); err != nil {
		return 0, err
	}
	return len(batch.Tags), nil
}

// ImportLocations stores a location log and returns the number of entries
// created. Rows without tags get the DefaultLocationTag.
func (s *Service) ImportLocations(ctx context.Context, text string) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	records, skipped := csvio.DecodeLocations(text)
	s.reportSkipped("locations", skipped)
	if len(records) == 0 {
		return 0, nil
	}

	labels := make([][]string, len(records))
	for i, r := range records {
		labels[i] = r.Tags
		if len(r.Tags) == 0 {
			labels[i] = []string{DefaultLocationTag}
		}
	}
	ids, err := s.resolveLabels(ctx, labels)
	if err != nil {
		return 0, err
	}

	reqs := make([]store.SaveRequest, len(records))
	for i, r := range records {
		reqs[i] = store.SaveRequest{
			CreatedAt: r.CreatedAt,
			Location:  entry.At(r.Latitude, r.Longitude, r.Label),
			TagIDs:    ids[i],
		}
	}
	return s.saveAll(ctx, reqs)
}

// ImportEntries stores an entry log and returns the number of entries
// created. Rows without tags are skipped.
func (s *Service) ImportEntries(ctx context.Context, text string) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	records, skipped := csvio.DecodeEntries(text)
	s.reportSkipped("entries", skipped)

	kept := records[:0]
	for _, r := range records {
		if len(r.Tags) == 0 {
			s.log().Warn("skipping entry without tags", zap.Time("createdAt", r.CreatedAt))
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return 0, nil
	}

	labels := make([][]string, len(kept))
	for i, r := range kept {
		labels[i] = r.Tags
	}
	ids, err := s.resolveLabels(ctx, labels)
	if err != nil {
		return 0, err
	}

	reqs := make([]store.SaveRequest, len(kept))
	for i, r := range kept {
		var loc entry.Location
		if r.Location != "" {
			label := r.Location
			loc.Label = &label
		}
		reqs[i] = store.SaveRequest{
			CreatedAt: r.CreatedAt,
			Note:      r.Note,
			Location:  loc,
			TagIDs:    ids[i],
		}
	}
	return s.saveAll(ctx, reqs)
}

// resolveLabels maps each row of labels to tag ids, matching existing tags
// ignoring case. Labels with no match are created as custom tags in a single
// import.
func (s *Service) resolveLabels(ctx context.Context, rows [][]string) ([][]string, error) {
	existing, err := s.Tags.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byLabel := make(map[string]string, len(existing))
	for _, t := range existing {
		byLabel[tag.Fold(t.Label)] = t.ID
	}

	var created []tag.Tag
	now := s.now()
	out := make([][]string, len(rows))
	for i, labels := range rows {
		seen := make(map[string]struct{}, len(labels))
		for _, label := range labels {
			label = strings.TrimSpace(label)
			if label == "" {
				continue
			}
			key := tag.Fold(label)
			id, ok := byLabel[key]
			if !ok {
				t := tag.NewCustom(label, now)
				created = append(created, t)
				byLabel[key] = t.ID
				id = t.ID
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out[i] = append(out[i], id)
		}
	}
	if len(created) > 0 {
		if err := s.Tags.Import(ctx, created, nil); err != nil {
			return nil, err
		}
		s.log().Info("created tags for import", zap.Int("count", len(created)))
	}
	return out, nil
}

func (s *Service) saveAll(ctx context.Context, reqs []store.SaveRequest) (int, error) {
	ids, err := s.Entries.SaveMany(ctx, reqs)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *Service) reportSkipped(kind string, skipped []error) {
	for _, err := range skipped {
		s.log().Warn("skipped row", zap.String("kind", kind), zap.Error(err))
	}
}

// ArchiveExport stores body in the archive and returns its key.
func (s *Service) ArchiveExport(kind archive.Kind, ext, body string) (string, error) {
	if s.Archive == nil {
		return "", errNoArchive
	}
	key, err := s.Archive.Put(kind, s.now(), ext, body)
	if err != nil {
		return "", err
	}
	s.log().Info("archived export", zap.String("key", key))
	return key, nil
}
