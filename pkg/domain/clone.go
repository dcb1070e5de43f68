package domain

// Structural clone helpers. Every value handed out by or accepted into the
// store goes through one of these so callers never share maps or slices with
// live state.

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// CloneImage returns a deep copy of img.
func CloneImage(img Image) Image {
	cp := img
	cp.Tags = cloneStrings(img.Tags)
	return cp
}

// CloneImages returns a deep copy of images, preserving order. A nil input
// yields an empty slice.
func CloneImages(images []Image) []Image {
	out := make([]Image, 0, len(images))
	for _, img := range images {
		out = append(out, CloneImage(img))
	}
	return out
}

// CloneStatusGrid returns a deep copy of g.
func CloneStatusGrid(g StatusGrid) StatusGrid {
	out := make(StatusGrid, len(g))
	for cat, subs := range g {
		cp := make(map[string]Status, len(subs))
		for sub, status := range subs {
			cp[sub] = status
		}
		out[cat] = cp
	}
	return out
}

// CloneBoolMap returns a copy of m; nil yields an empty map.
func CloneBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// CloneRecord returns a deep copy of r.
func CloneRecord(r InspectionRecord) InspectionRecord {
	cp := r
	cp.State = CloneStatusGrid(r.State)
	cp.Images = CloneImages(r.Images)
	cp.VisibleCategories = CloneBoolMap(r.VisibleCategories)
	return cp
}

// CloneRecords returns a deep copy of every record in m.
func CloneRecords(m map[string]InspectionRecord) map[string]InspectionRecord {
	out := make(map[string]InspectionRecord, len(m))
	for id, rec := range m {
		out[id] = CloneRecord(rec)
	}
	return out
}

// CloneQuickItem returns a deep copy of it.
func CloneQuickItem(it QuickItem) QuickItem {
	cp := it
	cp.Image = CloneImage(it.Image)
	if it.Images != nil {
		cp.Images = CloneImages(it.Images)
	}
	return cp
}

// CloneElementItem returns a deep copy of it.
func CloneElementItem(it ElementItem) ElementItem {
	cp := it
	if it.Image != nil {
		img := CloneImage(*it.Image)
		cp.Image = &img
	}
	return cp
}

// CloneReport returns a deep copy of r using cloneItem for each item.
func CloneReport[I any](r Report[I], cloneItem func(I) I) Report[I] {
	cp := r
	cp.Items = make([]I, 0, len(r.Items))
	for _, it := range r.Items {
		cp.Items = append(cp.Items, cloneItem(it))
	}
	return cp
}

// CloneReports returns a deep copy of every report in reports.
func CloneReports[I any](reports []Report[I], cloneItem func(I) I) []Report[I] {
	out := make([]Report[I], 0, len(reports))
	for _, r := range reports {
		out = append(out, CloneReport(r, cloneItem))
	}
	return out
}

// CloneCheckpoint returns a deep copy of c.
func CloneCheckpoint(c Checkpoint) Checkpoint {
	return Checkpoint{
		Timestamp:    c.Timestamp,
		Records:      CloneRecords(c.Records),
		QuickReports: CloneReports(c.QuickReports, CloneQuickItem),
	}
}

func cloneLabelMap(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = append([]string{}, v...)
	}
	return out
}

// CloneConfiguration returns a deep copy of c.
func CloneConfiguration(c Configuration) Configuration {
	cp := c
	cp.Labels.Images = cloneLabelMap(c.Labels.Images)
	cp.Labels.Comments = cloneLabelMap(c.Labels.Comments)
	cp.Labels.Frequent = append([]string{}, c.Labels.Frequent...)
	cp.Taxonomy.Categories = make([]Category, 0, len(c.Taxonomy.Categories))
	for _, cat := range c.Taxonomy.Categories {
		cc := cat
		cc.SubElements = append([]SubElement{}, cat.SubElements...)
		cp.Taxonomy.Categories = append(cp.Taxonomy.Categories, cc)
	}
	return cp
}
