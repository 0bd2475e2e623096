package entities

// SalarySummary reports one daily salary distribution run
type SalarySummary struct {
	KingDiscordID *int64
	NetGains      map[int64]int64 // discord ID -> eddies credited after tax
	Taxed         map[int64]int64 // discord ID -> eddies taken by the king
	TaxGains      int64           // total credited to the king
}

// Total returns the total eddies credited, tax included
func (s *SalarySummary) Total() int64 {
	var total int64
	for _, gain := range s.NetGains {
		total += gain
	}
	return total + s.TaxGains
}
