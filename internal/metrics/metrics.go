// Package metrics counts user-visible interactions with OpenTelemetry
// instruments. A ManualReader keeps everything in-process; the debug overlay
// pulls totals with Snapshot.
package metrics

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const (
	serviceName    = "orbit"
	serviceVersion = "0.1.0"
)

// Instrument names, also the keys of Snapshot.
const (
	PostsCreated    = "orbit_posts_created_total"
	GravitySnaps    = "orbit_gravity_snaps_total"
	TrackSelections = "orbit_track_selections_total"
	ThemeChanges    = "orbit_theme_changes_total"
	OuterToggles    = "orbit_outer_orbit_toggles_total"
)

// Recorder owns the meter provider and its counters. A nil *Recorder is a
// valid no-op so callers never need to guard.
type Recorder struct {
	provider *sdkmetric.MeterProvider
	reader   *sdkmetric.ManualReader

	posts   metric.Int64Counter
	snaps   metric.Int64Counter
	tracks  metric.Int64Counter
	themes  metric.Int64Counter
	toggles metric.Int64Counter
}

// New builds a Recorder backed by a ManualReader.
func New(ctx context.Context) (*Recorder, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(serviceName)

	r := &Recorder{provider: provider, reader: reader}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&r.posts, PostsCreated, "Posts ejected to the core", "{post}"},
		{&r.snaps, GravitySnaps, "Gravity-snap transitions started", "{snap}"},
		{&r.tracks, TrackSelections, "Tracks chosen from search results", "{track}"},
		{&r.themes, ThemeChanges, "Background or texture changes", "{change}"},
		{&r.toggles, OuterToggles, "Outer orbit inversions toggled", "{toggle}"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, fmt.Errorf("creating %s counter: %w", c.name, err)
		}
	}
	return r, nil
}

// PostCreated counts one new post.
func (r *Recorder) PostCreated() {
	if r == nil {
		return
	}
	r.posts.Add(context.Background(), 1)
}

// Snap counts one gravity-snap transition.
func (r *Recorder) Snap() {
	if r == nil {
		return
	}
	r.snaps.Add(context.Background(), 1)
}

// TrackSelected counts a track selection.
func (r *Recorder) TrackSelected(track string) {
	if r == nil {
		return
	}
	r.tracks.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("track", track)))
}

// ThemeChanged counts a theme change; field is "background" or "texture".
func (r *Recorder) ThemeChanged(field string) {
	if r == nil {
		return
	}
	r.themes.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("field", field)))
}

// OuterToggled counts an outer-orbit toggle.
func (r *Recorder) OuterToggled(on bool) {
	if r == nil {
		return
	}
	r.toggles.Add(context.Background(), 1,
		metric.WithAttributes(attribute.Bool("on", on)))
}

// Snapshot collects every counter and sums its data points across
// attribute sets. Counters that were never incremented are absent.
func (r *Recorder) Snapshot(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64)
	if r == nil {
		return out, nil
	}
	var rm metricdata.ResourceMetrics
	if err := r.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				out[m.Name] += dp.Value
			}
		}
	}
	return out, nil
}

// Names returns Snapshot keys in stable order.
func Names(snap map[string]int64) []string {
	names := make([]string, 0, len(snap))
	for k := range snap {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Shutdown releases the provider.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	return r.provider.Shutdown(ctx)
}
