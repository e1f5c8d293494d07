package web

// View identifies a page template.
type View string

const (
	ViewReportIndex  View = "reports/index"
	ViewReportNew    View = "reports/new"
	ViewReportShow   View = "reports/show"
	ViewReportEdit   View = "reports/edit"
	ViewErrorUnknown View = "error/unknown"
)

var allViews = []View{
	ViewReportIndex,
	ViewReportNew,
	ViewReportShow,
	ViewReportEdit,
	ViewErrorUnknown,
}
