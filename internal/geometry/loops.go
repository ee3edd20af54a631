package geometry

import "sort"

// nodeRing inserts every self-intersection of an open ring as an explicit
// vertex and splits the result into simple loops. Each crossing point is
// computed once so both edges receive bit-identical coordinates.
func nodeRing(r []vec) [][]vec {
	n := len(r)
	if n < 3 {
		return nil
	}

	type cut struct {
		t float64
		p vec
	}
	cuts := make([][]cut, n)
	param := func(a, b, v vec) float64 {
		d := b.sub(a)
		return v.sub(a).dot(d) / d.dot(d)
	}

	for i := 0; i < n; i++ {
		a, b := r[i], r[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			c, d := r[j], r[(j+1)%n]
			if properCross(a, b, c, d) {
				p, t, u := crossingPoint(a, b, c, d)
				cuts[i] = append(cuts[i], cut{t, p})
				cuts[j] = append(cuts[j], cut{u, p})
				continue
			}
			for _, v := range [2]vec{c, d} {
				if v != a && v != b && orient(a, b, v) == 0 && onSegment(a, b, v) {
					cuts[i] = append(cuts[i], cut{param(a, b, v), v})
				}
			}
			for _, v := range [2]vec{a, b} {
				if v != c && v != d && orient(c, d, v) == 0 && onSegment(c, d, v) {
					cuts[j] = append(cuts[j], cut{param(c, d, v), v})
				}
			}
		}
	}

	noded := make([]vec, 0, n)
	for i := 0; i < n; i++ {
		if len(noded) == 0 || noded[len(noded)-1] != r[i] {
			noded = append(noded, r[i])
		}
		cs := cuts[i]
		sort.Slice(cs, func(x, y int) bool { return cs[x].t < cs[y].t })
		for _, c := range cs {
			if noded[len(noded)-1] != c.p {
				noded = append(noded, c.p)
			}
		}
	}
	for len(noded) > 1 && noded[len(noded)-1] == noded[0] {
		noded = noded[:len(noded)-1]
	}
	return splitLoops(noded)
}

// splitLoops cuts an open ring at repeated vertices into simple loops.
// Loops with fewer than three vertices are discarded.
func splitLoops(r []vec) [][]vec {
	var loops [][]vec
	stack := make([]vec, 0, len(r))
	pos := make(map[vec]int, len(r))

	for _, v := range r {
		k, seen := pos[v]
		if !seen {
			pos[v] = len(stack)
			stack = append(stack, v)
			continue
		}
		if loop := stack[k:]; len(loop) >= 3 {
			loops = append(loops, append([]vec(nil), loop...))
		}
		for _, w := range stack[k+1:] {
			delete(pos, w)
		}
		stack = stack[:k+1]
	}
	if len(stack) >= 3 {
		loops = append(loops, stack)
	}
	return loops
}
