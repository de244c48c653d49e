package render

type Renderer interface {
	Init() error
	Deinit() error
	Size() (columns, rows int)
	Fill(row, column int, message string)
	AddDecoration(row, column int, content string, frames int)
	Flush()
}
