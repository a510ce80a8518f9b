package feed

// Viewer 发起请求的浏览者，零值表示匿名
type Viewer struct {
	ID string
}

func (v Viewer) Anonymous() bool { return v.ID == "" }

// AnonymousViewer 未能识别身份时使用
var AnonymousViewer = Viewer{}
