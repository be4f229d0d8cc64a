// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DebugInfo is the per-render telemetry collected when debug mode is on.
// Every method is safe on a nil receiver so render code can record
// unconditionally; with debug off the record simply does not exist.
type DebugInfo struct {
	RenderID         string
	PageType         PageType
	WrapperPath      string
	PageTemplatePath string
	Includes         []string
	Start            time.Time
	End              time.Time
	CacheHits        int
	CacheMisses      int
}

func newDebugInfo(start time.Time) *DebugInfo {
	return &DebugInfo{RenderID: uuid.NewString(), Start: start}
}

func (d *DebugInfo) addInclude(p string) {
	if d != nil {
		d.Includes = append(d.Includes, p)
	}
}

func (d *DebugInfo) recordRead(hit bool) {
	if d == nil {
		return
	}
	if hit {
		d.CacheHits++
	} else {
		d.CacheMisses++
	}
}

func (d *DebugInfo) finish(end time.Time) {
	if d != nil {
		d.End = end
	}
}

// Elapsed is the render time, zero until the render has finished.
func (d *DebugInfo) Elapsed() time.Duration {
	if d == nil || d.End.IsZero() {
		return 0
	}
	return d.End.Sub(d.Start)
}

// Headers exposes the record as response headers.
func (d *DebugInfo) Headers() map[string]string {
	if d == nil {
		return nil
	}
	return map[string]string{
		"X-Render-ID":            d.RenderID,
		"X-Render-Page-Type":     string(d.PageType),
		"X-Render-Wrapper":       d.WrapperPath,
		"X-Render-Page-Template": d.PageTemplatePath,
		"X-Render-Includes":      strings.Join(d.Includes, ","),
		"X-Render-Time-Ms":       strconv.FormatFloat(float64(d.Elapsed().Microseconds())/1000, 'f', 2, 64),
		"X-Render-Cache-Hits":    strconv.Itoa(d.CacheHits),
		"X-Render-Cache-Misses":  strconv.Itoa(d.CacheMisses),
	}
}
