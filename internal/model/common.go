package model

import (
	"database/sql/driver"
	"encoding/json"
)

// StringArray JSON字符串数组，存储为数据库JSON列
type StringArray []string

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Contains 判断数组中是否包含指定元素
func (s StringArray) Contains(target string) bool {
	for _, v := range s {
		if v == target {
			return true
		}
	}
	return false
}
