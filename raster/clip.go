package raster

// clipVertex is a VertexOut's clip-space position plus its varyings, the
// unit the Sutherland-Hodgman clipper operates on.
type clipVertex struct {
	clip    [4]float32
	varying [MaxVaryings][4]float32
	n       int
}

func lerpClipVertex(a, b *clipVertex, t float32) clipVertex {
	var out clipVertex
	for i := 0; i < 4; i++ {
		out.clip[i] = a.clip[i] + (b.clip[i]-a.clip[i])*t
	}
	out.n = a.n
	for v := 0; v < a.n; v++ {
		for i := 0; i < 4; i++ {
			out.varying[v][i] = a.varying[v][i] + (b.varying[v][i]-a.varying[v][i])*t
		}
	}
	return out
}

// planeDist returns a clip-space vertex's signed distance from one of the
// six canonical clip planes (w+x, w-x, w+y, w-y, w+z, w-z ≥ 0 is inside).
func planeDist(v *clipVertex, plane int) float32 {
	x, y, z, w := v.clip[0], v.clip[1], v.clip[2], v.clip[3]
	switch plane {
	case 0:
		return w + x
	case 1:
		return w - x
	case 2:
		return w + y
	case 3:
		return w - y
	case 4:
		return w + z
	case 5:
		return w - z
	}
	return 0
}

// allInside reports whether every vertex of a triangle is within the clip
// box, letting the caller short-circuit the Sutherland-Hodgman pass
// entirely for the overwhelmingly common case of a fully-visible triangle.
func allInside(tri [3]clipVertex) bool {
	for _, v := range tri {
		for p := 0; p < 6; p++ {
			if planeDist(&v, p) < 0 {
				return false
			}
		}
	}
	return true
}

// clipTriangle clips a triangle against the six clip-space frustum planes
// using Sutherland-Hodgman, returning the resulting convex polygon's
// vertices (0 when the triangle lies entirely outside any one plane).
func clipTriangle(tri [3]clipVertex) []clipVertex {
	if allInside(tri) {
		return []clipVertex{tri[0], tri[1], tri[2]}
	}

	poly := []clipVertex{tri[0], tri[1], tri[2]}
	for plane := 0; plane < 6 && len(poly) > 0; plane++ {
		var out []clipVertex
		n := len(poly)
		for i := 0; i < n; i++ {
			cur := poly[i]
			prev := poly[(i-1+n)%n]
			curIn := planeDist(&cur, plane) >= 0
			prevIn := planeDist(&prev, plane) >= 0
			if curIn {
				if !prevIn {
					t := planeDist(&prev, plane) / (planeDist(&prev, plane) - planeDist(&cur, plane))
					out = append(out, lerpClipVertex(&prev, &cur, t))
				}
				out = append(out, cur)
			} else if prevIn {
				t := planeDist(&prev, plane) / (planeDist(&prev, plane) - planeDist(&cur, plane))
				out = append(out, lerpClipVertex(&prev, &cur, t))
			}
		}
		poly = out
	}
	return poly
}

// fanTriangulate splits a convex polygon (vertex 0 as the fan pivot) into
// triangles, mirroring the fan convention used for clipped n-gons.
func fanTriangulate(poly []clipVertex) [][3]clipVertex {
	if len(poly) < 3 {
		return nil
	}
	tris := make([][3]clipVertex, 0, len(poly)-2)
	for i := 1; i+1 < len(poly); i++ {
		tris = append(tris, [3]clipVertex{poly[0], poly[i], poly[i+1]})
	}
	return tris
}
