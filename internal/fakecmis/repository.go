package fakecmis

import (
	"fmt"
	"strings"
	"time"
)

const (
	BaseFolder   = "cmis:folder"
	BaseDocument = "cmis:document"

	rootID = "root"
)

// Object is a stored folder or document.
type Object struct {
	ID          string
	Name        string
	BaseType    string
	ParentID    string
	ChangeToken string
	MimeType    string
	Content     []byte
	CheckedOut  bool
	Modified    time.Time

	hiddenRels map[string]bool
}

func (o *Object) isFolder() bool {
	return o.BaseType == BaseFolder
}

// ChangeEvent is one entry of the change log.
type ChangeEvent struct {
	ObjectID string
	Type     string
	Time     time.Time
}

type repository struct {
	id      string
	objects map[string]*Object
	order   []string
	changes []ChangeEvent
	version int
}

func newRepository(id string) *repository {
	r := &repository{id: id, objects: map[string]*Object{}}
	r.add(&Object{ID: rootID, BaseType: BaseFolder})
	return r
}

func (r *repository) add(o *Object) *Object {
	if o.ParentID == "" && o.ID != rootID {
		o.ParentID = rootID
	}
	r.touch(o)
	if _, exists := r.objects[o.ID]; !exists {
		r.order = append(r.order, o.ID)
	}
	r.objects[o.ID] = o
	r.log(o.ID, "created")
	return o
}

func (r *repository) touch(o *Object) {
	r.version++
	o.ChangeToken = fmt.Sprint(r.version)
	o.Modified = time.Date(2024, 1, 1, 0, 0, r.version, 0, time.UTC)
}

func (r *repository) log(id, changeType string) {
	r.changes = append(r.changes, ChangeEvent{
		ObjectID: id,
		Type:     changeType,
		Time:     time.Date(2024, 1, 1, 0, 0, r.version, 0, time.UTC),
	})
}

func (r *repository) remove(id string) {
	delete(r.objects, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.version++
	r.log(id, "deleted")
}

func (r *repository) children(id string) []*Object {
	var result []*Object
	for _, childID := range r.order {
		if o := r.objects[childID]; o.ParentID == id && o.ID != rootID {
			result = append(result, o)
		}
	}
	return result
}

func (r *repository) path(o *Object) string {
	if o.ID == rootID {
		return "/"
	}
	parent, ok := r.objects[o.ParentID]
	if !ok {
		return "/" + o.Name
	}
	return strings.TrimSuffix(r.path(parent), "/") + "/" + o.Name
}

// byPath returns the id of the object at path, or "".
func (r *repository) byPath(path string) string {
	for _, o := range r.objects {
		if r.path(o) == path {
			return o.ID
		}
	}
	return ""
}
