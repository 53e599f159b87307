package view

import (
	"context"
	"sort"
	"time"

	"github.com/driveshare/driveshare/pkg/share"
)

// ComponentDeps is what a dashboard widget may read from. Fetch functions
// receive it at request time so the registry itself stays stateless.
type ComponentDeps struct {
	Links *share.Store
}

// Component is one dashboard widget: a template and a typed data fetch.
// Dispatch is by registry lookup instead of a string-keyed template path,
// so an unknown name can never reach the renderer.
type Component struct {
	Name     string
	Template string
	Fetch    func(ctx context.Context, deps ComponentDeps) (any, error)
}

type Registry struct {
	components map[string]Component
}

func (r *Registry) Lookup(name string) (Component, bool) {
	c, ok := r.components[name]
	return c, ok
}

func (r *Registry) register(c Component) {
	r.components[c.Name] = c
}

type statsCardData struct {
	TotalLinks    int
	ActiveLinks   int
	TotalPDFViews int64
}

type linkClicks struct {
	Name      string
	Token     string
	ViewCount int64
}

type notification struct {
	Title   string
	Message string
}

// DefaultRegistry wires the six admin dashboard widgets.
func DefaultRegistry() *Registry {
	r := &Registry{components: map[string]Component{}}

	r.register(Component{
		Name:     "StatsCard",
		Template: "components/statscard",
		Fetch: func(ctx context.Context, deps ComponentDeps) (any, error) {
			links, err := deps.Links.All(ctx)
			if err != nil {
				return nil, err
			}

			data := statsCardData{TotalLinks: len(links)}
			now := time.Now()
			for _, l := range links {
				if !l.Expired(now) {
					data.ActiveLinks++
				}
				data.TotalPDFViews += l.PDFViews
			}
			return data, nil
		},
	})

	r.register(Component{
		Name:     "ShareStats",
		Template: "components/sharestats",
		Fetch: func(ctx context.Context, deps ComponentDeps) (any, error) {
			links, err := deps.Links.All(ctx)
			if err != nil {
				return nil, err
			}
			sort.Slice(links, func(i, j int) bool {
				return links[i].ViewCount > links[j].ViewCount
			})
			return links, nil
		},
	})

	r.register(Component{
		Name:     "LinkClicksStats",
		Template: "components/linkclicks",
		Fetch: func(ctx context.Context, deps ComponentDeps) (any, error) {
			links, err := deps.Links.All(ctx)
			if err != nil {
				return nil, err
			}

			clicks := make([]linkClicks, 0, len(links))
			for _, l := range links {
				clicks = append(clicks, linkClicks{Name: l.Name, Token: l.Token, ViewCount: l.ViewCount})
			}
			sort.Slice(clicks, func(i, j int) bool { return clicks[i].ViewCount > clicks[j].ViewCount })
			return clicks, nil
		},
	})

	r.register(Component{
		Name:     "RecentActivity",
		Template: "components/recentactivity",
		Fetch: func(ctx context.Context, deps ComponentDeps) (any, error) {
			links, err := deps.Links.All(ctx)
			if err != nil {
				return nil, err
			}
			sort.Slice(links, func(i, j int) bool {
				return links[i].CreatedAt.After(links[j].CreatedAt)
			})
			if len(links) > 10 {
				links = links[:10]
			}
			return links, nil
		},
	})

	r.register(Component{
		Name:     "QuickActions",
		Template: "components/quickactions",
		Fetch: func(ctx context.Context, deps ComponentDeps) (any, error) {
			return nil, nil
		},
	})

	r.register(Component{
		Name:     "Notifications",
		Template: "components/notifications",
		Fetch: func(ctx context.Context, deps ComponentDeps) (any, error) {
			links, err := deps.Links.All(ctx)
			if err != nil {
				return nil, err
			}

			var notes []notification
			cutoff := time.Now().Add(7 * 24 * time.Hour)
			for _, l := range links {
				if l.ExpiresAt != nil && l.ExpiresAt.Before(cutoff) && !l.Expired(time.Now()) {
					notes = append(notes, notification{
						Title:   "Link expiring soon",
						Message: l.Name + " expires " + l.ExpiresAt.Format("Jan 2, 2006"),
					})
				}
			}
			return notes, nil
		},
	})

	return r
}
