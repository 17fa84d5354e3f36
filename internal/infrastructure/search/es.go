package search

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/sportsin/sportsin/internal/application"
	"github.com/sportsin/sportsin/internal/domain/entity"
)

// ProfileIndex serves the discover tab from an Elasticsearch index of
// profile documents. Indexing is best effort and never blocks callers
// for more than a few seconds.
type ProfileIndex struct {
	ES        *elasticsearch.Client
	IndexName string
	Logger    *logrus.Logger
}

func NewProfileIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *ProfileIndex {
	return &ProfileIndex{ES: es, IndexName: index, Logger: logger}
}

func (p *ProfileIndex) Index(ctx context.Context, prof *entity.Profile) error {
	if p.ES == nil || p.IndexName == "" {
		return nil
	}
	doc := map[string]any{
		"id":         prof.ID,
		"username":   prof.Username,
		"full_name":  prof.FullName,
		"avatar_url": prof.AvatarURL,
		"sport":      string(prof.Sport),
		"user_type":  string(prof.UserType),
		"bio":        prof.Bio,
		"location":   prof.Location,
		"followers":  prof.FollowersCount,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: p.IndexName, DocumentID: prof.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, p.ES)
	if err != nil {
		if p.Logger != nil {
			p.Logger.WithError(err).WithField("profile_id", prof.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && p.Logger != nil {
		p.Logger.WithField("status", res.Status()).WithField("profile_id", prof.ID).Warn("es index response error")
	}
	return nil
}

// Search runs a multi_match over the profile fields shown on the
// discover page. Username and full name outrank bio and location.
func (p *ProfileIndex) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if p.ES == nil || p.IndexName == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^3", "full_name^2", "sport", "bio", "location"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := p.ES.Search(p.ES.Search.WithContext(c), p.ES.Search.WithIndex(p.IndexName), p.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

var _ application.ProfileIndexer = (*ProfileIndex)(nil)
