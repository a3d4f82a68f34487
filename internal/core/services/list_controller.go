package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/kamal-hamza/assetctl/internal/core/ports"
)

// PageSizes are the page sizes offered by the list views
var PageSizes = []int{5, 10, 25}

// DefaultPageSize is used when no page size is configured
const DefaultPageSize = 10

// ListDescriptor specialises the list controller for one entity type
type ListDescriptor[T any] struct {
	// Resource is used for capability checks and log fields
	Resource Resource

	// ID returns the backend identifier of an entity
	ID func(T) string

	// Label names an entity in confirmation prompts
	Label func(T) string

	// SearchFields returns the texts the search term is matched against
	SearchFields func(T) []string

	// Status returns the entity's lifecycle status
	Status func(T) string

	// Statuses lists the values the status filter cycles through
	Statuses []string
}

// ListView is a consistent snapshot of a list controller for rendering
type ListView[T any] struct {
	Items     []T
	Total     int
	Page      int
	PageSize  int
	PageCount int
	Search    string
	Status    string
	Loading   bool
	Loaded    bool
	Err       error
}

// ListController keeps the authoritative snapshot of one collection plus
// the local filter and paging state
type ListController[T any] struct {
	mu       sync.RWMutex
	desc     ListDescriptor[T]
	source   ports.EntitySource[T]
	logger   *logrus.Entry
	items    []T
	loaded   bool
	loading  bool
	err      error
	search   string
	status   string
	page     int
	pageSize int
	seq      uint64
}

// NewListController creates a controller over source
func NewListController[T any](desc ListDescriptor[T], source ports.EntitySource[T], pageSize int, logger *logrus.Logger) *ListController[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	var entry *logrus.Entry
	if logger != nil {
		entry = logger.WithField("component", "list")
	} else {
		entry = logrus.WithField("component", "list")
	}
	return &ListController[T]{
		desc:     desc,
		source:   source,
		logger:   entry.WithField("resource", desc.Resource),
		pageSize: pageSize,
	}
}

// Descriptor returns the descriptor the controller was built with
func (c *ListController[T]) Descriptor() ListDescriptor[T] {
	return c.desc
}

// BeginFetch marks a fetch as started and returns its sequence number
func (c *ListController[T]) BeginFetch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.loading = true
	return c.seq
}

// Fetch requests the full collection. It does not touch controller state.
func (c *ListController[T]) Fetch(ctx context.Context) ([]T, error) {
	return c.source.List(ctx)
}

// Apply stores the result of the fetch started as seq. Results of any
// fetch other than the latest one started are dropped; Apply reports
// whether the result was used.
func (c *ListController[T]) Apply(seq uint64, items []T, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.logger.WithFields(logrus.Fields{"seq": seq, "latest": c.seq}).Debug("dropping stale response")
		return false
	}

	c.loading = false
	if err != nil {
		c.err = err
		c.logger.WithError(err).Warn("failed to fetch collection")
		return true
	}

	c.err = nil
	c.loaded = true
	c.items = items
	c.clampPage()
	return true
}

// Refresh fetches the collection and applies it
func (c *ListController[T]) Refresh(ctx context.Context) error {
	seq := c.BeginFetch()
	items, err := c.Fetch(ctx)
	c.Apply(seq, items, err)
	return err
}

// SetSearchTerm sets the case-insensitive substring filter
func (c *ListController[T]) SetSearchTerm(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = term
	c.page = 0
}

// SetStatusFilter restricts the list to one status; "" clears the filter
func (c *ListController[T]) SetStatusFilter(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
	c.page = 0
}

// CycleStatusFilter advances the status filter through "" and the
// descriptor's statuses
func (c *ListController[T]) CycleStatusFilter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	options := append([]string{""}, c.desc.Statuses...)
	next := 0
	for i, s := range options {
		if s == c.status {
			next = (i + 1) % len(options)
			break
		}
	}
	c.status = options[next]
	c.page = 0
	return c.status
}

// SetPage moves to page n, clamped to the available pages
func (c *ListController[T]) SetPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = n
	c.clampPage()
}

// SetPageSize changes the page size and returns to the first page
func (c *ListController[T]) SetPageSize(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n <= 0 {
		n = DefaultPageSize
	}
	c.pageSize = n
	c.page = 0
}

// CyclePageSize advances through PageSizes
func (c *ListController[T]) CyclePageSize() int {
	c.mu.RLock()
	current := c.pageSize
	c.mu.RUnlock()

	next := PageSizes[0]
	for i, size := range PageSizes {
		if size == current {
			next = PageSizes[(i+1)%len(PageSizes)]
			break
		}
	}
	c.SetPageSize(next)
	return next
}

// Items returns the full snapshot in server order
func (c *ListController[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

// Find returns the entity with the given id from the snapshot
func (c *ListController[T]) Find(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if c.desc.ID(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Filtered returns the snapshot narrowed by the search term and status
func (c *ListController[T]) Filtered() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filtered()
}

func (c *ListController[T]) filtered() []T {
	term := strings.ToLower(strings.TrimSpace(c.search))
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if c.status != "" && !strings.EqualFold(c.desc.Status(item), c.status) {
			continue
		}
		if term != "" && !c.matches(item, term) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (c *ListController[T]) matches(item T, term string) bool {
	for _, field := range c.desc.SearchFields(item) {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Page returns the current page of the filtered collection
func (c *ListController[T]) Page() []T {
	return c.View().Items
}

// PageCount returns the number of pages of the filtered collection, at least 1
func (c *ListController[T]) PageCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return pageCount(len(c.filtered()), c.pageSize)
}

// View returns a consistent snapshot for rendering
func (c *ListController[T]) View() ListView[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	filtered := c.filtered()
	start := c.page * c.pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + c.pageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	return ListView[T]{
		Items:     filtered[start:end],
		Total:     len(filtered),
		Page:      c.page,
		PageSize:  c.pageSize,
		PageCount: pageCount(len(filtered), c.pageSize),
		Search:    c.search,
		Status:    c.status,
		Loading:   c.loading,
		Loaded:    c.loaded,
		Err:       c.err,
	}
}

func (c *ListController[T]) clampPage() {
	last := pageCount(len(c.filtered()), c.pageSize) - 1
	if c.page > last {
		c.page = last
	}
	if c.page < 0 {
		c.page = 0
	}
}

func pageCount(total, size int) int {
	if size <= 0 || total == 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Delete asks confirmer first; declining is a no-op. A failed delete is
// logged and leaves the snapshot untouched. A successful one refetches.
func (c *ListController[T]) Delete(ctx context.Context, id string, confirmer ports.Confirmer) error {
	label := id
	if item, ok := c.Find(id); ok && c.desc.Label != nil {
		label = c.desc.Label(item)
	}

	ok, err := confirmer.Confirm(ctx, fmt.Sprintf("Delete %s?", label))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	log := c.logger.WithField("id", id)
	if err := c.source.Delete(ctx, id); err != nil {
		log.WithError(err).Error("failed to delete")
		return err
	}
	log.Info("deleted")

	if err := c.Refresh(ctx); err != nil {
		log.WithError(err).Warn("refetch after delete failed")
	}
	return nil
}
