package service

// Fallback 返回候选值，ok=false 表示该来源没有值
type Fallback[T any] func() (T, bool)

// Resolve 按优先级取第一个有值的来源
func Resolve[T any](chain ...Fallback[T]) (T, bool) {
	for _, f := range chain {
		if v, ok := f(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// FromPtr 非 nil 且非空字符串视为有值
func FromPtr(p *string) Fallback[string] {
	return func() (string, bool) {
		if p == nil || *p == "" {
			return "", false
		}
		return *p, true
	}
}

// FromString 非空字符串视为有值
func FromString(s string) Fallback[string] {
	return func() (string, bool) { return s, s != "" }
}

// Const 永远有值，放在链尾做默认值
func Const[T any](v T) Fallback[T] {
	return func() (T, bool) { return v, true }
}

// When cond 为真时返回 v
func When[T any](cond bool, v T) Fallback[T] {
	return func() (T, bool) { return v, cond }
}
