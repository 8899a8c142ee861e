package generator

import (
	"github.com/cedar-policy/cedar-for-agents-sub000/cedar/schema"
	"github.com/cedar-policy/cedar-go/types"
)

// synthesizedEntity is an entity created for an object value.
type synthesizedEntity struct {
	uid        *schema.Value
	entityType string
	attributes map[string]*schema.Value
	tags       map[string]*schema.Value
}

// entitySet collects synthesized entities in creation order. Adding the same
// entity twice is a no-op; adding a different entity under a taken uid fails.
type entitySet struct {
	entities []*synthesizedEntity
	byUID    map[string]*synthesizedEntity
}

func newEntitySet() *entitySet {
	return &entitySet{byUID: map[string]*synthesizedEntity{}}
}

func uidKey(uid *schema.Value) string {
	return uid.EntityType + schema.Separator + schema.Quote(uid.EntityID)
}

func (s *entitySet) add(uid *schema.Value, attributes, tags map[string]*schema.Value) error {
	key := uidKey(uid)
	if existing, ok := s.byUID[key]; ok {
		if !schema.RecordValue(existing.attributes).Equal(schema.RecordValue(attributes)) ||
			!schema.RecordValue(existing.tags).Equal(schema.RecordValue(tags)) {
			return &DuplicateEntityError{UID: key}
		}
		return nil
	}
	entity := &synthesizedEntity{uid: uid, entityType: uid.EntityType, attributes: attributes, tags: tags}
	s.entities = append(s.entities, entity)
	s.byUID[key] = entity
	return nil
}

// merge returns a copy of entities extended with the synthesized entities.
func (s *entitySet) merge(entities types.EntityMap) (types.EntityMap, error) {
	ret := make(types.EntityMap, len(entities)+len(s.entities))
	for uid, entity := range entities {
		ret[uid] = entity
	}
	for _, synthesized := range s.entities {
		attributes, err := schema.RecordOf(synthesized.attributes)
		if err != nil {
			return nil, err
		}
		tags, err := schema.RecordOf(synthesized.tags)
		if err != nil {
			return nil, err
		}
		uid := synthesized.uid.EntityUID()
		if existing, ok := ret[uid]; ok {
			if !existing.Attributes.Equal(attributes) || !existing.Tags.Equal(tags) {
				return nil, &DuplicateEntityError{UID: uidKey(synthesized.uid)}
			}
			continue
		}
		ret[uid] = types.Entity{UID: uid, Attributes: attributes, Tags: tags}
	}
	return ret, nil
}
