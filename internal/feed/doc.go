// Package feed 信息流的纯逻辑部分：投票汇总、范围判定、服务端与客户端共用的分页参数，
// 以及两端约定的错误种类。
package feed
