package mock

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/repo"
)

// InMemoryDB stores rows per table as plain struct values and evaluates
// queries with the semantics the SQL repository produces, so tests built on
// the mock exercise real filter, ordering and uniqueness behavior instead
// of a repository that ignores its query.
type InMemoryDB struct {
	mu     sync.RWMutex
	tables map[string][]reflect.Value
}

func NewInMemoryDB() *InMemoryDB {
	return &InMemoryDB{
		tables: map[string][]reflect.Value{},
	}
}

func structValue(resource any) (reflect.Value, error) {
	v := reflect.ValueOf(resource)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, ErrMustBePointer
		}

		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return reflect.Value{}, ErrMustBePointer
	}

	return v, nil
}

func cloneValue(v reflect.Value) reflect.Value {
	c := reflect.New(v.Type()).Elem()
	c.Set(v)

	return c
}

func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	return v
}

// toSnake converts a Go field name to the column name the default GORM
// naming strategy would produce.
func toSnake(name string) string {
	var b strings.Builder

	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if prevLower || (i > 0 && nextLower) {
				b.WriteRune('_')
			}

			b.WriteRune(unicode.ToLower(r))

			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

// columnValue resolves a column name to the struct field holding it,
// descending into embedded structs the way GORM flattens them.
func columnValue(structVal reflect.Value, column string) (reflect.Value, bool) {
	t := structVal.Type()

	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if v, ok := columnValue(structVal.Field(i), column); ok {
				return v, true
			}

			continue
		}

		if toSnake(field.Name) == column {
			return structVal.Field(i), true
		}
	}

	return reflect.Value{}, false
}

func equalValues(field reflect.Value, want any) (bool, error) {
	field = deref(field)
	wv := deref(reflect.ValueOf(want))

	if !field.IsValid() || !wv.IsValid() {
		return false, nil
	}

	if f, ok := field.Interface().(uuid.UUID); ok {
		w, ok := wv.Interface().(uuid.UUID)
		return ok && f == w, nil
	}

	if f, ok := field.Interface().(time.Time); ok {
		w, ok := wv.Interface().(time.Time)
		return ok && f.Equal(w), nil
	}

	switch field.Kind() {
	case reflect.String:
		if wv.Kind() == reflect.String {
			return field.String() == wv.String(), nil
		}
	case reflect.Bool:
		if wv.Kind() == reflect.Bool {
			return field.Bool() == wv.Bool(), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if wv.CanInt() {
			return field.Int() == wv.Int(), nil
		}
	}

	return false, errs.Wrap(ErrUnsupportedCompare, fmt.Errorf("%s vs %T", field.Kind(), want))
}

func compareOrdered(field reflect.Value, want any) (int, error) {
	field = deref(field)
	wv := deref(reflect.ValueOf(want))

	if !field.IsValid() || !wv.IsValid() {
		return 0, errs.Wrap(ErrUnsupportedCompare, fmt.Errorf("nil operand vs %T", want))
	}

	if f, ok := field.Interface().(time.Time); ok {
		w, ok := wv.Interface().(time.Time)
		if !ok {
			return 0, errs.Wrap(ErrUnsupportedCompare, fmt.Errorf("%s vs time", wv.Kind()))
		}

		return f.Compare(w), nil
	}

	switch field.Kind() {
	case reflect.String:
		if wv.Kind() == reflect.String {
			return strings.Compare(field.String(), wv.String()), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if wv.CanInt() {
			switch {
			case field.Int() < wv.Int():
				return -1, nil
			case field.Int() > wv.Int():
				return 1, nil
			default:
				return 0, nil
			}
		}
	}

	return 0, errs.Wrap(ErrUnsupportedCompare, fmt.Errorf("%s vs %T", field.Kind(), want))
}

func matchCondition(structVal reflect.Value, cond repo.Condition) (bool, error) {
	entry := cond.Value
	if entry.Err != nil {
		return false, entry.Err
	}

	field, ok := columnValue(structVal, cond.Field)
	if !ok {
		return false, errs.Wrap(ErrUnknownColumn, fmt.Errorf("%q on %s", cond.Field, structVal.Type()))
	}

	key := entry.Key

	switch key.Operation {
	case repo.Equal:
		switch key.Value {
		case repo.NotEmpty:
			f := deref(field)
			return f.IsValid() && f.Kind() == reflect.String && f.String() != "", nil
		case repo.Empty:
			f := deref(field)
			return !f.IsValid() || f.Kind() != reflect.String || f.String() == "", nil
		default:
			v := reflect.ValueOf(key.Value)
			isSlice := (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) &&
				v.Type() != reflect.TypeFor[uuid.UUID]()

			if isSlice {
				for i := range v.Len() {
					eq, err := equalValues(field, v.Index(i).Interface())
					if err != nil {
						return false, err
					}

					if eq {
						return true, nil
					}
				}

				return false, nil
			}

			return equalValues(field, key.Value)
		}
	case repo.NotEqual:
		eq, err := equalValues(field, key.Value)
		return !eq, err
	case repo.GreaterThan:
		c, err := compareOrdered(field, key.Value)
		return c > 0, err
	case repo.LessThan:
		c, err := compareOrdered(field, key.Value)
		return c < 0, err
	}

	return false, errs.Wrap(ErrUnsupportedCompare, fmt.Errorf("operation %q", key.Operation))
}

func matchCompositeKey(structVal reflect.Value, ck repo.CompositeKey) (bool, error) {
	if len(ck.Conds) == 0 {
		return true, nil
	}

	result := ck.IsStrict

	for _, cond := range ck.Conds {
		m, err := matchCondition(structVal, cond)
		if err != nil {
			return false, err
		}

		if ck.IsStrict {
			result = result && m
		} else {
			result = result || m
		}
	}

	return result, nil
}

// matchQuery folds the condition groups left to right, the same way the SQL
// repository chains Where and Or.
func matchQuery(structVal reflect.Value, query repo.Query) (bool, error) {
	if len(query.CompositeKeyGroup) == 0 {
		return true, nil
	}

	result, err := matchCompositeKey(structVal, query.CompositeKeyGroup[0].CompositeKey)
	if err != nil {
		return false, err
	}

	for _, group := range query.CompositeKeyGroup[1:] {
		m, err := matchCompositeKey(structVal, group.CompositeKey)
		if err != nil {
			return false, err
		}

		if group.IsStrict {
			result = result && m
		} else {
			result = result || m
		}
	}

	return result, nil
}

func sortRows(rows []reflect.Value, orderFields []repo.OrderField) error {
	var sortErr error

	sort.SliceStable(rows, func(i, j int) bool {
		for _, order := range orderFields {
			a, okA := columnValue(rows[i], order.Field)
			b, okB := columnValue(rows[j], order.Field)

			if !okA || !okB {
				sortErr = errs.Wrap(ErrUnknownColumn, fmt.Errorf("%q", order.Field))
				return false
			}

			c, err := orderCompare(a, b)
			if err != nil {
				sortErr = err
				return false
			}

			if c == 0 {
				continue
			}

			if order.Direction == repo.Desc {
				return c > 0
			}

			return c < 0
		}

		return false
	})

	return sortErr
}

func orderCompare(a, b reflect.Value) (int, error) {
	a, b = deref(a), deref(b)
	if !a.IsValid() || !b.IsValid() {
		return 0, nil
	}

	if at, ok := a.Interface().(time.Time); ok {
		bt, ok := b.Interface().(time.Time)
		if !ok {
			return 0, ErrUnsupportedCompare
		}

		return at.Compare(bt), nil
	}

	if au, ok := a.Interface().(uuid.UUID); ok {
		bu, ok := b.Interface().(uuid.UUID)
		if !ok {
			return 0, ErrUnsupportedCompare
		}

		return strings.Compare(au.String(), bu.String()), nil
	}

	switch a.Kind() {
	case reflect.String:
		return strings.Compare(a.String(), b.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch {
		case a.Int() < b.Int():
			return -1, nil
		case a.Int() > b.Int():
			return 1, nil
		default:
			return 0, nil
		}
	case reflect.Bool:
		switch {
		case a.Bool() == b.Bool():
			return 0, nil
		case b.Bool():
			return -1, nil
		default:
			return 1, nil
		}
	}

	return 0, ErrUnsupportedCompare
}

func paginate(rows []reflect.Value, query repo.Query) []reflect.Value {
	limit := query.Limit
	if limit <= 0 {
		limit = repo.DefaultLimit
	}

	offset := query.Offset
	if offset >= len(rows) {
		return nil
	}

	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}

	return rows[offset:end]
}

type uniqueSpec struct {
	columns []string
}

// uniqueSpecs extracts single column `unique` markers and named
// `uniqueIndex` groups from the GORM struct tags, so the mock rejects the
// same duplicates PostgreSQL would.
func uniqueSpecs(t reflect.Type) []uniqueSpec {
	named := map[string][]string{}

	var specs []uniqueSpec

	collectUniqueColumns(t, named, &specs)

	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		specs = append(specs, uniqueSpec{columns: named[name]})
	}

	return specs
}

func collectUniqueColumns(t reflect.Type, named map[string][]string, specs *[]uniqueSpec) {
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectUniqueColumns(field.Type, named, specs)
			continue
		}

		column := toSnake(field.Name)

		for _, part := range strings.Split(field.Tag.Get("gorm"), ";") {
			if part == "unique" {
				*specs = append(*specs, uniqueSpec{columns: []string{column}})
				continue
			}

			name, ok := strings.CutPrefix(part, "uniqueIndex:")
			if !ok {
				continue
			}

			name, _, _ = strings.Cut(name, ",")
			named[name] = append(named[name], column)
		}
	}
}

func primaryKeyColumn(t reflect.Type) string {
	for i := range t.NumField() {
		field := t.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if col := primaryKeyColumn(field.Type); col != "" {
				return col
			}

			continue
		}

		if strings.Contains(field.Tag.Get("gorm"), "primaryKey") {
			return toSnake(field.Name)
		}
	}

	return ""
}

func autoTimestamps(structVal reflect.Value, create bool) {
	now := time.Now().UTC()

	if create {
		if f, ok := columnValue(structVal, repo.CreatedField); ok && f.CanSet() {
			if t, isTime := f.Interface().(time.Time); isTime && t.IsZero() {
				f.Set(reflect.ValueOf(now))
			}
		}
	}

	if f, ok := columnValue(structVal, "updated_at"); ok && f.CanSet() {
		if _, isTime := f.Interface().(time.Time); isTime {
			f.Set(reflect.ValueOf(now))
		}
	}
}

func (d *InMemoryDB) insert(resource repo.Resource) error {
	structVal, err := structValue(resource)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	table := resource.TableName()

	if i := d.findConflict(table, structVal, primaryKeyColumn(structVal.Type())); i >= 0 {
		return errs.Wrap(repo.ErrUniqueConstraint, fmt.Errorf("conflicting row in %s", table))
	}

	autoTimestamps(structVal, true)

	d.tables[table] = append(d.tables[table], cloneValue(structVal))

	return nil
}

// selectRows returns copies of all rows matching query and fence, sorted
// and paginated, together with the total match count.
func (d *InMemoryDB) selectRows(
	table string,
	query repo.Query,
	fence bool,
	tenantID uuid.UUID,
) ([]reflect.Value, int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var matched []reflect.Value

	for _, row := range d.tables[table] {
		ok, err := d.rowMatches(row, query, fence, tenantID)
		if err != nil {
			return nil, 0, err
		}

		if ok {
			matched = append(matched, cloneValue(row))
		}
	}

	err := sortRows(matched, query.OrderFields)
	if err != nil {
		return nil, 0, err
	}

	return paginate(matched, query), len(matched), nil
}

func (d *InMemoryDB) rowMatches(
	row reflect.Value,
	query repo.Query,
	fence bool,
	tenantID uuid.UUID,
) (bool, error) {
	if fence {
		field, ok := columnValue(row, repo.TenantIDField)
		if !ok {
			return false, errs.Wrap(ErrUnknownColumn, fmt.Errorf("%q on %s", repo.TenantIDField, row.Type()))
		}

		eq, err := equalValues(field, tenantID)
		if err != nil || !eq {
			return false, err
		}
	}

	return matchQuery(row, query)
}

// mutateRows applies fn to every matching row under the write lock and
// returns the number of rows touched.
func (d *InMemoryDB) mutateRows(
	table string,
	query repo.Query,
	fence bool,
	tenantID uuid.UUID,
	fn func(row reflect.Value) error,
) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	touched := 0

	for _, row := range d.tables[table] {
		ok, err := d.rowMatches(row, query, fence, tenantID)
		if err != nil {
			return touched, err
		}

		if !ok {
			continue
		}

		err = fn(row)
		if err != nil {
			return touched, err
		}

		touched++
	}

	return touched, nil
}

func structColumns(t reflect.Type) []string {
	var columns []string

	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			columns = append(columns, structColumns(field.Type)...)
			continue
		}

		columns = append(columns, toSnake(field.Name))
	}

	return columns
}

// applyUpdate copies columns from src into row following the update
// directive: all columns, the named columns, or only non zero columns. The
// primary key is never overwritten.
func applyUpdate(row, src reflect.Value, update repo.Update, pkColumn string) error {
	for _, column := range structColumns(src.Type()) {
		if column == pkColumn {
			continue
		}

		srcField, ok := columnValue(src, column)
		if !ok {
			continue
		}

		switch {
		case update.All:
		case len(update.Fields) > 0:
			if !slices.Contains(update.Fields, column) {
				continue
			}
		default:
			if srcField.IsZero() {
				continue
			}
		}

		dst, ok := columnValue(row, column)
		if !ok || !dst.CanSet() {
			return errs.Wrap(ErrUnknownColumn, fmt.Errorf("%q on %s", column, row.Type()))
		}

		dst.Set(srcField)
	}

	return nil
}

// findConflict returns the index of the stored row the new value would
// collide with, through the primary key or any unique column group.
func (d *InMemoryDB) findConflict(table string, structVal reflect.Value, pkColumn string) int {
	specs := uniqueSpecs(structVal.Type())

	if pkColumn != "" {
		if pk, ok := columnValue(structVal, pkColumn); ok && !pk.IsZero() {
			specs = append([]uniqueSpec{{columns: []string{pkColumn}}}, specs...)
		}
	}

	for _, spec := range specs {
		for i, row := range d.tables[table] {
			same := true

			for _, column := range spec.columns {
				a, _ := columnValue(structVal, column)
				b, _ := columnValue(row, column)

				eq, err := equalValues(a, b.Interface())
				if err != nil || !eq {
					same = false
					break
				}
			}

			if same {
				return i
			}
		}
	}

	return -1
}

// upsert inserts the resource or overwrites the row it conflicts with. A
// conflicting row of a foreign tenant is left untouched, matching the SQL
// repository's conditional conflict clause.
func (d *InMemoryDB) upsert(resource repo.Resource, fence bool, tenantID uuid.UUID) error {
	structVal, err := structValue(resource)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	table := resource.TableName()
	pkColumn := primaryKeyColumn(structVal.Type())

	autoTimestamps(structVal, true)

	conflict := d.findConflict(table, structVal, pkColumn)
	if conflict < 0 {
		d.tables[table] = append(d.tables[table], cloneValue(structVal))
		return nil
	}

	row := d.tables[table][conflict]

	if fence {
		field, ok := columnValue(row, repo.TenantIDField)
		if !ok {
			return errs.Wrap(ErrUnknownColumn, fmt.Errorf("%q on %s", repo.TenantIDField, row.Type()))
		}

		eq, err := equalValues(field, tenantID)
		if err != nil {
			return err
		}

		if !eq {
			return nil
		}
	}

	return applyUpdate(row, structVal, repo.Update{All: true}, pkColumn)
}

func (d *InMemoryDB) deleteRows(
	table string,
	query repo.Query,
	fence bool,
	tenantID uuid.UUID,
) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.tables[table][:0]
	deleted := 0

	for _, row := range d.tables[table] {
		ok, err := d.rowMatches(row, query, fence, tenantID)
		if err != nil {
			return 0, err
		}

		if ok {
			deleted++
			continue
		}

		kept = append(kept, row)
	}

	d.tables[table] = kept

	return deleted, nil
}
