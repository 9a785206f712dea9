/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

// viewToSurface maps a point in a view of vw x vh units that shows the
// surface scaled to fit (letterboxed, aspect preserved) back into surface
// pixels. ok is false when the point lies in the letterbox.
func viewToSurface(px, py, vw, vh float32, sw, sh int) (x, y float64, ok bool) {
	if vw <= 0 || vh <= 0 || sw <= 0 || sh <= 0 {
		return 0, 0, false
	}
	scale, offX, offY := fitView(vw, vh, sw, sh)
	x = (float64(px) - offX) / scale
	y = (float64(py) - offY) / scale
	if x < 0 || y < 0 || x > float64(sw) || y > float64(sh) {
		return x, y, false
	}
	return x, y, true
}

// fitView returns the scale from surface pixels to view units and the
// offset of the drawn surface inside the view.
func fitView(vw, vh float32, sw, sh int) (scale, offX, offY float64) {
	sx := float64(vw) / float64(sw)
	sy := float64(vh) / float64(sh)
	scale = min(sx, sy)
	offX = (float64(vw) - float64(sw)*scale) / 2
	offY = (float64(vh) - float64(sh)*scale) / 2
	return scale, offX, offY
}
