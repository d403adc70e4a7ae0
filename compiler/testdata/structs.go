package main

type Point struct {
	X       int
	Y       int
	Label   string
	Visible bool
}

func main() {
	p := Point{X: 3, Y: 4, Label: "p"}
	q := p
	q.X = q.X * 10
	p = Point{X: p.Y, Y: p.X, Label: p.Label}
	println(p.X, p.Y, p.Label, p.Visible)
	println(q.X, q.Y, q.Label)

	var z Point
	z.Visible = !z.Visible
	println(z.X, z.Label, z.Visible)
}
