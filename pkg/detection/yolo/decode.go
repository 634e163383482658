package yolo

import "image"

type candidates struct {
	boxes    []image.Rectangle
	scores   []float32
	classIDs []int
}

// decode walks a transposed YOLOv8 tensor (attrs x anchors) and keeps every
// anchor whose best class score clears the confidence threshold. Boxes are
// scaled from model input space to image space.
func decode(data []float32, anchors, attrs int, cfg Config, imgW, imgH float32) candidates {
	var out candidates
	if anchors <= 0 || attrs <= 4 || len(data) < anchors*attrs {
		return out
	}

	sx := imgW / float32(cfg.InputWidth)
	sy := imgH / float32(cfg.InputHeight)

	for i := 0; i < anchors; i++ {
		best := float32(0)
		bestClass := 0
		for c := 4; c < attrs; c++ {
			if score := data[c*anchors+i]; score > best {
				best = score
				bestClass = c - 4
			}
		}
		if best < cfg.ConfidenceThresh {
			continue
		}

		cx := data[0*anchors+i]
		cy := data[1*anchors+i]
		w := data[2*anchors+i]
		h := data[3*anchors+i]

		out.boxes = append(out.boxes, image.Rect(
			int((cx-w/2)*sx),
			int((cy-h/2)*sy),
			int((cx+w/2)*sx),
			int((cy+h/2)*sy),
		))
		out.scores = append(out.scores, best)
		out.classIDs = append(out.classIDs, bestClass)
	}
	return out
}
