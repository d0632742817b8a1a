// Package domain models the air-quality grid dataset and the geometry used to
// render it as a hexagonal heatmap.
//
// # Data Source
//
// The dataset is a single CSV file in which every row describes one spatial
// grid cell for one year. The cell is given as a bounding box and carries a
// set of environmental metrics sampled for that cell:
//
//	left,right,top,bottom,Year,API,Temp,Humidity,Precip,Wind,Vegetation,Traffic,Building,Altitude,Population
//
// The bounding box columns are WGS-84 degrees: left/right are longitudes,
// top/bottom are latitudes. API is the air pollution index; it is the only
// metric that drives colour. All metrics may be missing, in which case they
// are carried as NaN (see [Value]).
//
// # Hexagons
//
// Each row becomes one [HexCell]: a regular hexagon of circumradius [HexSize]
// degrees centred on the bounding-box midpoint. The ring is sampled at seven
// evenly spaced angles over the closed interval [0, 2π], so the seventh vertex
// coincides with the first and the ring is closed:
//
//	vertex_i = (cx + size·cos(i·2π/6), cy + size·sin(i·2π/6)),  i = 0..6
//
// The first vertex sits due east of the centre. Hexagons are planar shapes in
// degree space, not projected or H3 cells.
//
// # Colour
//
// Colour is a linear ramp over the red channel across the observed API range of
// the cells being rendered (one year at a time):
//
//	red = floor(255 · (API − min) / (max − min))
//	colour = (red, 100, 170, 90)
//
// When every finite API in the set is equal the range is degenerate and red is
// 0. Cells without a finite API are fully transparent (0, 0, 0, 0).
//
// # Viewport
//
// The map camera is centred on the mean of the cell centres at a fixed zoom of
// 5 and pitch of 0. An empty cell set has no defined centre; callers short
// circuit to [DefaultViewport] and flag the layer as having no data.
package domain
