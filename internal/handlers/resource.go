package handlers

import (
	"net/http"

	"roti-erp/internal/apperr"
	"roti-erp/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is what every generic resource row implements through models.Base.
type Record interface {
	Identity() models.Base
	Restore(orig models.Base)
}

// defaulter is implemented by rows whose fields start non-zero on create.
type defaulter interface {
	SetDefaults()
}

// Resource serves list/get/create/update/delete for one table. PT is the
// pointer type of T so the Base methods are reachable.
type Resource[T any, PT interface {
	*T
	Record
}] struct {
	db     *gorm.DB
	entity string

	// Preload names associations loaded by List and Get.
	Preload []string
	// Filters maps query parameters to columns for List.
	Filters map[string]string
	// IDParam names the path parameter; "id" when empty.
	IDParam string
	// Prepare runs before Create (existing is nil) and Update.
	Prepare func(c *gin.Context, item, existing PT) error
}

func NewResource[T any, PT interface {
	*T
	Record
}](db *gorm.DB, entity string) *Resource[T, PT] {
	return &Resource[T, PT]{db: db, entity: entity}
}

func (r *Resource[T, PT]) query(c *gin.Context) *gorm.DB {
	q := r.db.WithContext(c.Request.Context())
	for _, p := range r.Preload {
		q = q.Preload(p)
	}
	return q
}

// --- GET: /<resource> ---
func (r *Resource[T, PT]) List(c *gin.Context) {
	var page pageQuery
	if !bindQuery(c, &page) {
		return
	}

	q := r.db.WithContext(c.Request.Context()).Model(PT(new(T)))
	for param, column := range r.Filters {
		if v, ok := c.GetQuery(param); ok && v != "" {
			q = q.Where(column+" = ?", filterValue(v))
		}
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondError(c, apperr.FromDB(err, r.entity))
		return
	}

	for _, p := range r.Preload {
		q = q.Preload(p)
	}
	items := []T{}
	if err := q.Order("created_at desc, id desc").Limit(page.limit()).Offset(page.Offset).Find(&items).Error; err != nil {
		respondError(c, apperr.FromDB(err, r.entity))
		return
	}
	c.JSON(http.StatusOK, listBody(items, total, page))
}

// filterValue lets boolean columns be filtered with true/false.
func filterValue(v string) interface{} {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

// --- GET: /<resource>/:id ---
func (r *Resource[T, PT]) Get(c *gin.Context) {
	id, ok := idParam(c, r.paramName())
	if !ok {
		return
	}
	item := PT(new(T))
	if err := r.query(c).First(item, id).Error; err != nil {
		respondError(c, apperr.FromDB(err, r.entity))
		return
	}
	c.JSON(http.StatusOK, item)
}

// --- POST: /<resource> ---
func (r *Resource[T, PT]) Create(c *gin.Context) {
	item := PT(new(T))
	if d, ok := any(item).(defaulter); ok {
		d.SetDefaults()
	}
	if !bindJSON(c, item) {
		return
	}
	item.Restore(models.Base{})
	if r.Prepare != nil {
		var none PT
		if err := r.Prepare(c, item, none); err != nil {
			respondError(c, err)
			return
		}
	}

	if err := r.db.WithContext(c.Request.Context()).Omit(clause.Associations).Create(item).Error; err != nil {
		respondError(c, apperr.FromDB(err, r.entity))
		return
	}
	c.JSON(http.StatusCreated, item)
}

// --- PUT: /<resource>/:id ---
// The body is merged onto the stored row; id and createdAt never change.
func (r *Resource[T, PT]) Update(c *gin.Context) {
	id, ok := idParam(c, r.paramName())
	if !ok {
		return
	}
	db := r.db.WithContext(c.Request.Context())

	existing := PT(new(T))
	if err := db.First(existing, id).Error; err != nil {
		respondError(c, apperr.FromDB(err, r.entity))
		return
	}
	updated := PT(new(T))
	*updated = *existing
	if !bindJSON(c, updated) {
		return
	}
	updated.Restore(existing.Identity())
	if r.Prepare != nil {
		if err := r.Prepare(c, updated, existing); err != nil {
			respondError(c, err)
			return
		}
	}

	if err := db.Omit(clause.Associations).Save(updated).Error; err != nil {
		respondError(c, apperr.FromDB(err, r.entity))
		return
	}
	c.JSON(http.StatusOK, updated)
}

// --- DELETE: /<resource>/:id ---
func (r *Resource[T, PT]) Delete(c *gin.Context) {
	id, ok := idParam(c, r.paramName())
	if !ok {
		return
	}
	res := r.db.WithContext(c.Request.Context()).Delete(PT(new(T)), id)
	if res.Error != nil {
		respondError(c, apperr.FromDB(res.Error, r.entity))
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, apperr.NotFound("%s %d not found", r.entity, id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": r.entity + " deleted"})
}

func (r *Resource[T, PT]) paramName() string {
	if r.IDParam == "" {
		return "id"
	}
	return r.IDParam
}

// Register mounts the five routes on g. Reads need read, writes need write.
func (r *Resource[T, PT]) Register(g *gin.RouterGroup, path string, read, write gin.HandlerFunc) {
	item := path + "/:" + r.paramName()
	g.GET(path, read, r.List)
	g.GET(item, read, r.Get)
	g.POST(path, write, r.Create)
	g.PUT(item, write, r.Update)
	g.DELETE(item, write, r.Delete)
}
