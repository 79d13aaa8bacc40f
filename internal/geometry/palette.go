package geometry

// Palette holds one colour per disk rank, smallest first.
var Palette = [12]string{
	"#EEC900",
	"#FF6A6A",
	"#7CCD7C",
	"#FF00FF",
	"#228B22",
	"#D2691E",
	"#00BFFF",
	"#FFA500",
	"#BEBEBE",
	"#7AC5CD",
	"#4169E1",
	"#8A2BE2",
}

// DiskColor wraps around the palette for out-of-range ranks.
func DiskColor(rank int) string {
	if rank < 1 {
		rank = 1
	}
	return Palette[(rank-1)%len(Palette)]
}
