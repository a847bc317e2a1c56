// Package partialgen 根据 @Partial 注解为结构体生成部分类型。
//
// # 概述
//
// 一个 @Partial 注解描述一个部分类型：哪些字段被省略，哪些字段变为可选。
// 同一结构体可以有多个 @Partial，每个注解独立生成一组类型和转换函数。
//
//	// User 用户
//	// @Partial(omit(id, password), optional(name), derive(Validate))
//	type User struct {
//	    id       int64
//	    name     string
//	    Email    string
//	    password string
//	}
//
// 生成：
//
//	// @Validate
//	type PartialUser struct {
//	    Name  mo.Option[string]
//	    Email string
//	}
//
//	type PartialUserOmitted struct {
//	    ID       int64
//	    Password string
//	}
//
//	func (p PartialUser) ToUser(id int64, password string, nameFallback mo.Option[string]) User
//	func NewPartialUser(full User) PartialUser
//	func SplitPartialUser(full User) (PartialUser, PartialUserOmitted)
//	func (u User) IntoPartialUserWithOmitted() (PartialUser, PartialUserOmitted)
//
// # 注解语法
//
//	@Partial
//	@Partial("Name", derive(A, B), omit(f1, f2), optional(f3))
//
// 子句顺序任意，每种子句最多出现一次，允许结尾逗号。
// "Name" 缺省为 Partial<类型名>。同一字段不能同时出现在 omit 与 optional 中。
//
// # 可选字段
//
// 可选字段在部分类型中为 mo.Option[T]。还原时依次取部分类型中的值、
// 调用方提供的备用值；二者都为空时得到 T 的零值，因此可选字段适合本身
// 能表达"不存在"的类型（指针、切片、map、mo.Option 等）。
//
// # 诊断
//
// 错误以 *Diagnostic 返回，格式为 file:line:col: PG00x message (@Partial #i)：
//
//	PG001 注解语法错误
//	PG002 omit/optional 引用了不存在的字段
//	PG003 字段处理方式冲突（omit 与 optional 重叠、导出后重名、与生成方法同名）
//	PG004 生成的名称冲突
//	PG005 不支持的目标（泛型结构体、非结构体）
//
// 同一结构体的任意注解出错时，该结构体不生成任何代码，其余结构体不受影响。
package partialgen
