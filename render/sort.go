package render

import (
	"sort"

	"github.com/mogaika/cubism_renderer/cubism"
)

type SortableDrawable struct {
	DrawableIndex int
	RenderOrder   int32
}

// BuildSortOrder returns drawables in identity order.
func BuildSortOrder(model cubism.Model) []SortableDrawable {
	return BuildSortOrderInto(make([]SortableDrawable, model.DrawableCount()), model)
}

func BuildSortOrderInto(dst []SortableDrawable, model cubism.Model) []SortableDrawable {
	dst = dst[:model.DrawableCount()]
	orders := model.DrawableRenderOrders()
	for d := range dst {
		dst[d] = SortableDrawable{DrawableIndex: d, RenderOrder: orders[d]}
	}
	return dst
}

// Resort refreshes render orders from model and sorts ascending.
// Equal render orders keep ascending drawable index so the result
// does not depend on the previous permutation.
func Resort(sorted []SortableDrawable, model cubism.Model) {
	orders := model.DrawableRenderOrders()
	for i := range sorted {
		sorted[i].RenderOrder = orders[sorted[i].DrawableIndex]
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].RenderOrder != sorted[j].RenderOrder {
			return sorted[i].RenderOrder < sorted[j].RenderOrder
		}
		return sorted[i].DrawableIndex < sorted[j].DrawableIndex
	})
}
