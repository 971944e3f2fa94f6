package ecs

import (
	"iter"
	"reflect"
	"slices"
	"unsafe"
)

var entityIdType = reflect.TypeFor[EntityId]()

// queryLayout records where each component pointer lives inside a query struct.
type queryLayout struct {
	types    []reflect.Type
	offsets  []uintptr
	idOffset uintptr
	hasId    bool
}

func newQueryLayout(structType reflect.Type) *queryLayout {
	if structType.Kind() != reflect.Struct {
		panic("Query type parameter must be a struct")
	}

	layout := &queryLayout{}
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		switch {
		case field.Type == entityIdType:
			layout.idOffset = field.Offset
			layout.hasId = true
		case field.Type.Kind() == reflect.Ptr:
			layout.types = append(layout.types, field.Type.Elem())
			layout.offsets = append(layout.offsets, field.Offset)
		default:
			panic("Query struct fields must be component pointers or ecs.EntityId")
		}
	}
	return layout
}

func (l *queryLayout) matches(archetype *Archetype) bool {
	for _, t := range l.types {
		if !archetype.HasComponent(t) {
			return false
		}
	}
	return true
}

// Query iterates every entity carrying all the components named by the pointer
// fields of T. An embedded or named ecs.EntityId field receives the entity's id.
//
//	ecs.Query[struct {
//		ecs.EntityId
//		*Position
//		*Velocity
//	}]
//
// Results are snapshotted by Execute. The Scheduler calls Execute right before each
// system runs, so entities spawned by an earlier system in the same frame are visible.
type Query[T any] struct {
	storage *Storage
	layout  *queryLayout

	archetypes       []*Archetype
	seenArchetypes   int
	cachedEntities   []EntityId
	cachedComponents []T
	cacheValid       bool
}

// NewQuery creates a Query bound to storage.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init binds the query to a storage. Called by the Scheduler during registration.
func (q *Query[T]) Init(storage *Storage) {
	q.storage = storage
	q.layout = newQueryLayout(reflect.TypeFor[T]())
	q.archetypes = nil
	q.seenArchetypes = -1
	q.cacheValid = false
}

// Execute snapshots the matching entities.
func (q *Query[T]) Execute() {
	if len(q.storage.archetypes) != q.seenArchetypes {
		q.refreshArchetypes()
	}

	q.cachedEntities = q.cachedEntities[:0]
	q.cachedComponents = q.cachedComponents[:0]

	for _, archetype := range q.archetypes {
		columns := make([]componentColumn, len(q.layout.types))
		for i, t := range q.layout.types {
			columns[i] = archetype.columns[archetype.columnIndex(t)]
		}

		for slot := range archetype.columns[0].Iter() {
			var result T
			base := unsafe.Pointer(&result)
			id := NewEntityId(archetype.id, uint32(slot))

			if q.layout.hasId {
				*(*EntityId)(unsafe.Add(base, q.layout.idOffset)) = id
			}
			for i, column := range columns {
				component := column.Get(slot)
				*(*unsafe.Pointer)(unsafe.Add(base, q.layout.offsets[i])) = (*iface)(unsafe.Pointer(&component)).data
			}

			q.cachedEntities = append(q.cachedEntities, id)
			q.cachedComponents = append(q.cachedComponents, result)
		}
	}

	q.cacheValid = true
}

// refreshArchetypes rebuilds the matching archetype list, ordered by ID so iteration
// order does not depend on map ordering.
func (q *Query[T]) refreshArchetypes() {
	q.archetypes = q.archetypes[:0]
	for _, archetype := range q.storage.archetypes {
		if len(archetype.columns) > 0 && q.layout.matches(archetype) {
			q.archetypes = append(q.archetypes, archetype)
		}
	}
	slices.SortFunc(q.archetypes, func(a, b *Archetype) int {
		switch {
		case a.id < b.id:
			return -1
		case a.id > b.id:
			return 1
		}
		return 0
	})
	q.seenArchetypes = len(q.storage.archetypes)
}

// Iter returns an iterator over the query structs of the last snapshot.
// Panics if Execute() has not been called.
func (q *Query[T]) Iter() iter.Seq[T] {
	if !q.cacheValid {
		panic("Query.Iter() called before Query.Execute()")
	}

	return func(yield func(T) bool) {
		for i := range q.cachedComponents {
			if !yield(q.cachedComponents[i]) {
				return
			}
		}
	}
}

// All returns an iterator over entity IDs and query structs.
func (q *Query[T]) All() iter.Seq2[EntityId, T] {
	if !q.cacheValid {
		panic("Query.All() called before Query.Execute()")
	}

	return func(yield func(EntityId, T) bool) {
		for i := range q.cachedEntities {
			if !yield(q.cachedEntities[i], q.cachedComponents[i]) {
				return
			}
		}
	}
}

// Len returns the number of entities in the last snapshot.
func (q *Query[T]) Len() int {
	return len(q.cachedEntities)
}
