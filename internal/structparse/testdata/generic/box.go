package generic

// Box 泛型结构体
type Box[T any] struct {
	Value T
}

// Alias 非结构体类型
type Alias = string

// Plain 普通结构体，生成文件中的方法不计入
type Plain struct {
	Value int
}
