package geom

// Cover scales a srcW x srcH image uniformly so it fills a dstW x dstH surface,
// cropping the overflow equally on both sides. It returns the scale and the offset of
// the scaled image's top-left corner.
func Cover(srcW, srcH, dstW, dstH float64) (scale, offsetX, offsetY float64) {
	if srcW <= 0 || srcH <= 0 {
		return 1, 0, 0
	}

	if dstW/dstH > srcW/srcH {
		scale = dstW / srcW
	} else {
		scale = dstH / srcH
	}
	return scale, (dstW - srcW*scale) / 2, (dstH - srcH*scale) / 2
}
