package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxSubmissionBody = 1 << 20

// submissionFields 宽松读取请求体：不是 JSON 对象时按空提交处理
func submissionFields(ctx *gin.Context) map[string]json.RawMessage {
	fields := map[string]json.RawMessage{}
	if ctx.Request.Body == nil {
		return fields
	}
	body, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxSubmissionBody))
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		return fields
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return map[string]json.RawMessage{}
	}
	return fields
}

// answerString 字符串原样返回，数字和布尔值转成字符串，其余形状视为空答案
func answerString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// intField 解析非负整数，接受数字或数字字符串，无法解析时为 0
func intField(raw json.RawMessage) int {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// quizAnswers 解析 {"problem_id": answer}，无法识别的键被忽略
func quizAnswers(raw json.RawMessage) map[uint]string {
	answers := map[uint]string{}
	if len(raw) == 0 {
		return answers
	}
	var byKey map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byKey); err != nil {
		return answers
	}
	for key, value := range byKey {
		id, err := strconv.ParseUint(strings.TrimSpace(key), 10, 32)
		if err != nil || id == 0 {
			continue
		}
		answers[uint(id)] = answerString(value)
	}
	return answers
}
