package feed

import (
	"errors"
	"math"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// 查询参数名
const (
	ParamLimit         = "limit"
	ParamPage          = "page"
	ParamSubredditName = "subredditName"
)

// FirstPage 首屏页码。线上页码从 1 开始，只有 PageRequest 负责换算成下标
const FirstPage = 1

var validate = validator.New()

// Params 接口与客户端共用的请求参数
type Params struct {
	Limit         int     `validate:"min=1"`
	Page          int     `validate:"min=1"`
	SubredditName *string
}

// Filter 可选的社区过滤
type Filter struct {
	CommunityName *string
}

// PageRequest 解析器读取的页，Index 从 0 开始
type PageRequest struct {
	Limit int
	Index int
}

func (r PageRequest) Offset() int { return r.Index * r.Limit }

// Validate 检查 limit 与 index 范围；maxLimit<=0 不限上限
func (r PageRequest) Validate(maxLimit int) error {
	if r.Limit < 1 {
		return invalid(ParamLimit, "must be a positive integer")
	}
	if maxLimit > 0 && r.Limit > maxLimit {
		return invalid(ParamLimit, "must not exceed "+strconv.Itoa(maxLimit))
	}
	if r.Index < 0 {
		return invalid(ParamPage, "must not be negative")
	}
	if overflows(r.Limit, r.Index) {
		return invalid(ParamPage, "is too large")
	}
	return nil
}

// overflows 报告 index*limit 是否超出 int；溢出的 offset 会被静默当成别的页
func overflows(limit, index int) bool {
	return limit > 0 && index > math.MaxInt/limit
}

// Validate 给了社区名就不能为空
func (f Filter) Validate() error {
	if f.CommunityName != nil && *f.CommunityName == "" {
		return invalid(ParamSubredditName, "must not be empty")
	}
	return nil
}

// ParseParams 解析查询参数；缺失或非整数直接拒绝，不套默认值
func ParseParams(q url.Values) (Params, error) {
	var p Params

	limit, err := requiredInt(q, ParamLimit)
	if err != nil {
		return p, err
	}
	page, err := requiredInt(q, ParamPage)
	if err != nil {
		return p, err
	}
	p.Limit, p.Page = limit, page

	if vs, ok := q[ParamSubredditName]; ok && len(vs) > 0 {
		name := vs[0]
		p.SubredditName = &name
	}

	return p, p.Validate()
}

func (p Params) Validate() error {
	if err := p.Filter().Validate(); err != nil {
		return err
	}
	err := validate.Struct(p)
	if err == nil {
		if overflows(p.Limit, p.Page-FirstPage) {
			return invalid(ParamPage, "is too large")
		}
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return invalid(paramName(verrs[0].Field()), "failed "+verrs[0].Tag()+" rule")
	}
	return invalid("params", err.Error())
}

// Encode ParseParams 的逆操作
func (p Params) Encode() url.Values {
	q := url.Values{}
	q.Set(ParamLimit, strconv.Itoa(p.Limit))
	q.Set(ParamPage, strconv.Itoa(p.Page))
	if p.SubredditName != nil {
		q.Set(ParamSubredditName, *p.SubredditName)
	}
	return q
}

func (p Params) Filter() Filter { return Filter{CommunityName: p.SubredditName} }

// PageRequest 页码换算成从 0 开始的下标
func (p Params) PageRequest() PageRequest {
	return PageRequest{Limit: p.Limit, Index: p.Page - FirstPage}
}

func requiredInt(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, invalid(name, "is required")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid(name, "must be an integer")
	}
	return n, nil
}

func paramName(field string) string {
	switch field {
	case "Limit":
		return ParamLimit
	case "Page":
		return ParamPage
	default:
		return field
	}
}
