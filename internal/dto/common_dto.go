package dto

import "encoding/json"

// ActionResponse 动作API响应
type ActionResponse struct {
	Help    string       `json:"help"`
	Success bool         `json:"success"`
	Result  interface{}  `json:"result,omitempty"`
	Error   *ActionError `json:"error,omitempty"`
}

// ActionError 动作API错误；校验错误时 Fields 为字段 -> 错误列表
type ActionError struct {
	Type    string
	Message string
	Fields  map[string][]string
}

// MarshalJSON 把字段错误平铺进错误对象
func (e *ActionError) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{"__type": e.Type}
	if e.Message != "" {
		out["message"] = e.Message
	}
	for field, msgs := range e.Fields {
		out[field] = msgs
	}
	return json.Marshal(out)
}
