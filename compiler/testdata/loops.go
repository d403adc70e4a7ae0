package main

func main() {
	sum := 0
	for i := 1; i <= 5; i++ {
		sum += i
	}
	println(sum)

	n := 0
	for {
		n++
		if n%2 == 0 {
			continue
		}
		if n > 7 {
			break
		}
		print(n)
	}
	println("done", n)
}
