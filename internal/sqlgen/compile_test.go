package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relq/internal/header"
	"github.com/roach88/relq/internal/rel"
)

func productsTable() *rel.Table {
	return &rel.Table{
		Name:      "products",
		Qualified: "`main`.`products`",
		Header: header.Header{
			{Name: "id", Type: header.TypeNumeric, Key: true},
			{Name: "name", Type: header.TypeString},
			{Name: "price", Type: header.TypeNumeric},
		},
	}
}

func ordersTable() *rel.Table {
	return &rel.Table{
		Name:      "orders",
		Qualified: "`main`.`orders`",
		Header: header.Header{
			{Name: "order_id", Type: header.TypeNumeric, Key: true},
			{Name: "id", Type: header.TypeNumeric},
			{Name: "total", Type: header.TypeNumeric},
		},
	}
}

func TestCompile_BareTable(t *testing.T) {
	h, frag, err := Compile(rel.From(productsTable()), EncloseNever)
	require.NoError(t, err)

	assert.Equal(t, "`main`.`products`", frag)
	assert.Equal(t, []string{"id", "name", "price"}, h.Names())
}

func TestCompile_RawRestriction(t *testing.T) {
	n, err := rel.Where(rel.From(productsTable()), "`price` > 10")
	require.NoError(t, err)

	_, frag, err := Compile(n, EncloseNever)
	require.NoError(t, err)
	assert.Equal(t, "`main`.`products` WHERE `price` > 10", frag)
}

func TestCompile_RestrictionsANDCombine(t *testing.T) {
	n, err := rel.Where(rel.From(productsTable()), "`price` > 10", "`name` != ''")
	require.NoError(t, err)

	_, frag, err := Compile(n, EncloseNever)
	require.NoError(t, err)
	assert.Equal(t, "`main`.`products` WHERE `price` > 10 AND `name` != ''", frag)
}

func TestCompile_Projection(t *testing.T) {
	p := rel.Project(rel.From(productsTable()), "name")

	h, frag, err := Compile(p, EncloseNever)
	require.NoError(t, err)

	// The fragment is untouched; the key attribute rides along.
	assert.Equal(t, "`main`.`products`", frag)
	assert.Equal(t, []string{"name", "id"}, h.Names())
	assert.Equal(t, "`name`, `id`", SelectList(h))
}

func TestCompile_RenameMaterializesOnEnclose(t *testing.T) {
	p := rel.Project(rel.From(productsTable()), "name->title")

	h, frag, err := Compile(p, EncloseAliased)
	require.NoError(t, err)

	assert.Equal(t, "(SELECT `name` AS `title`, `id` FROM `main`.`products`) AS rv1", frag)
	assert.False(t, h.HasAliases())
	assert.Equal(t, []string{"title", "id"}, h.Names())
}

func TestCompile_RestrictionOverRenameWrapsFirst(t *testing.T) {
	// A WHERE referencing the renamed column only works once the alias
	// is a real column of an enclosing subquery.
	p := rel.Project(rel.From(productsTable()), "name->title")
	n, err := rel.Where(p, "`title` = 'x'")
	require.NoError(t, err)

	_, frag, err := Compile(n, EncloseNever)
	require.NoError(t, err)
	assert.Equal(t,
		"(SELECT `name` AS `title`, `id` FROM `main`.`products`) AS rv1 WHERE `title` = 'x'",
		frag)
}

func TestCompile_RestrictionOverRestrictedChildWrapsFirst(t *testing.T) {
	// The child's WHERE survives projection unenclosed; the outer
	// restriction must not stack a second WHERE onto the same statement.
	inner, err := rel.Where(rel.From(productsTable()), "`price` > 10")
	require.NoError(t, err)
	n, err := rel.Where(rel.Project(inner, "name"), "`id` < 3")
	require.NoError(t, err)

	_, frag, err := Compile(n, EncloseNever)
	require.NoError(t, err)
	assert.Equal(t,
		"(SELECT `name`, `id` FROM `main`.`products` WHERE `price` > 10) AS rv1 WHERE `id` < 3",
		frag)
}

func TestCompile_StackedProjectionRestrictionsWrapEachLevel(t *testing.T) {
	inner, err := rel.Where(rel.From(productsTable()), "`price` > 10")
	require.NoError(t, err)
	mid, err := rel.Where(rel.Project(inner, "name"), "`name` != ''")
	require.NoError(t, err)
	n, err := rel.Where(rel.Project(mid, "name"), "`id` < 3")
	require.NoError(t, err)

	_, frag, err := Compile(n, EncloseNever)
	require.NoError(t, err)
	assert.Equal(t,
		"(SELECT `name`, `id` FROM "+
			"(SELECT `name`, `id` FROM `main`.`products` WHERE `price` > 10) AS rv1"+
			" WHERE `name` != '') AS rv2 WHERE `id` < 3",
		frag)
}

func TestCompile_NaturalJoin(t *testing.T) {
	j := rel.Times(rel.From(productsTable()), rel.From(ordersTable()))

	h, frag, err := Compile(j, EncloseNever)
	require.NoError(t, err)

	assert.Equal(t, "`main`.`products` NATURAL JOIN `main`.`orders`", frag)
	assert.Equal(t, []string{"id", "name", "price", "order_id", "total"}, h.Names())
	assert.Equal(t, []string{"id", "order_id"}, h.PrimaryKey())
}

func TestCompile_RestrictedJoinChildEncloses(t *testing.T) {
	left, err := rel.Where(rel.From(productsTable()), "`price` > 10")
	require.NoError(t, err)
	j := rel.Times(left, rel.From(ordersTable()))

	_, frag, err := Compile(j, EncloseNever)
	require.NoError(t, err)
	assert.Equal(t,
		"(SELECT `id`, `name`, `price` FROM `main`.`products` WHERE `price` > 10) AS rv1"+
			" NATURAL JOIN `main`.`orders`",
		frag)
}

func TestCompile_Aggregate(t *testing.T) {
	agg := rel.Summarize(rel.From(productsTable()), rel.From(ordersTable()),
		"name", "count(*)->n")

	h, frag, err := Compile(agg, EncloseNever)
	require.NoError(t, err)

	assert.Equal(t, "`main`.`products` NATURAL JOIN `main`.`orders` GROUP BY `id`", frag)
	assert.True(t, h.HasAliases())
	assert.Equal(t, "`name`, count(*) AS `n`, `id`", SelectList(h))
}

func TestCompile_AggregateEnclosedForConsumption(t *testing.T) {
	agg := rel.Summarize(rel.From(productsTable()), rel.From(ordersTable()),
		"name", "count(*)->n")

	h, frag, err := Compile(agg, EncloseAggregate)
	require.NoError(t, err)

	assert.Equal(t,
		"(SELECT `name`, count(*) AS `n`, `id` FROM `main`.`products`"+
			" NATURAL JOIN `main`.`orders` GROUP BY `id`) AS rv1",
		frag)
	assert.False(t, h.HasAliases())
	assert.Equal(t, []string{"name", "n", "id"}, h.Names())
}

func TestCompile_AggregateRequiresComputation(t *testing.T) {
	agg := rel.Summarize(rel.From(productsTable()), rel.From(ordersTable()), "name")

	_, _, err := Compile(agg, EncloseNever)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeAggregateRequiresComputation))
}

func TestCompile_AggregateSharedBlobRejected(t *testing.T) {
	left := &rel.Table{
		Name:      "docs",
		Qualified: "`main`.`docs`",
		Header: header.Header{
			{Name: "id", Type: header.TypeNumeric, Key: true},
			{Name: "body", Type: header.TypeBlob},
		},
	}
	right := &rel.Table{
		Name:      "revisions",
		Qualified: "`main`.`revisions`",
		Header: header.Header{
			{Name: "rev", Type: header.TypeNumeric, Key: true},
			{Name: "body", Type: header.TypeBlob},
		},
	}
	agg := rel.Summarize(rel.From(left), rel.From(right), "count(*)->n")

	_, _, err := Compile(agg, EncloseNever)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeBlobJoinKey))
}

func TestCompile_StandaloneUnionRejected(t *testing.T) {
	u, err := rel.Union("a = 1", "b = 2")
	require.NoError(t, err)

	_, _, err = Compile(u, EncloseNever)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeInvalidStandaloneOperator))
}

func TestCompile_StandaloneNegationRejected(t *testing.T) {
	neg := rel.Negate(rel.From(productsTable()))

	_, _, err := Compile(neg, EncloseNever)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeInvalidStandaloneOperator))
}

func TestCompile_AliasesUniqueWithinStatement(t *testing.T) {
	// Two enclosing children in one statement must draw distinct
	// aliases from the statement-local counter.
	left, err := rel.Where(rel.From(productsTable()), "`price` > 10")
	require.NoError(t, err)
	right, err := rel.Where(rel.From(ordersTable()), "`total` > 5")
	require.NoError(t, err)
	j := rel.Times(left, right)

	_, frag, err := Compile(j, EncloseNever)
	require.NoError(t, err)
	assert.Equal(t,
		"(SELECT `id`, `name`, `price` FROM `main`.`products` WHERE `price` > 10) AS rv1"+
			" NATURAL JOIN "+
			"(SELECT `order_id`, `id`, `total` FROM `main`.`orders` WHERE `total` > 5) AS rv2",
		frag)
}

func TestCompile_CountersIndependentAcrossStatements(t *testing.T) {
	// Repeated compilations of the same tree restart at rv1; nothing
	// leaks across statements.
	p := rel.Project(rel.From(productsTable()), "name->title")

	_, first, err := Compile(p, EncloseAliased)
	require.NoError(t, err)
	_, second, err := Compile(p, EncloseAliased)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "AS rv1")
}

func TestCompile_TableAliasHeaderStrippedAtLeaf(t *testing.T) {
	// A catalog header carrying a pending alias resolves at the leaf,
	// not by wrapping the base table.
	tbl := &rel.Table{
		Name:      "products",
		Qualified: "`main`.`products`",
		Header: header.Header{
			{Name: "id", Type: header.TypeNumeric, Key: true, Alias: "pid"},
		},
	}

	h, frag, err := Compile(rel.From(tbl), EncloseNever)
	require.NoError(t, err)
	assert.Equal(t, "`main`.`products`", frag)
	assert.Equal(t, []string{"pid"}, h.Names())
	assert.False(t, h.HasAliases())
}
