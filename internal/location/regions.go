package location

// cityRegions maps a known city or area onto its region.
var cityRegions = map[string]string{
	// London and the home counties
	"london":         "london",
	"greater london": "london",
	"city of london": "london",
	"canary wharf":   "london",
	"croydon":        "london",
	"stratford":      "london",

	"reading":       "south east",
	"guildford":     "south east",
	"brighton":      "south east",
	"oxford":        "south east",
	"milton keynes": "south east",
	"slough":        "south east",
	"maidstone":     "south east",
	"southampton":   "south east",
	"portsmouth":    "south east",
	"crawley":       "south east",
	"kent":          "south east",
	"surrey":        "south east",
	"berkshire":     "south east",

	"cambridge":     "east of england",
	"norwich":       "east of england",
	"chelmsford":    "east of england",
	"luton":         "east of england",
	"st albans":     "east of england",
	"watford":       "east of england",
	"ipswich":       "east of england",
	"essex":         "east of england",
	"hertfordshire": "east of england",

	"bristol":    "south west",
	"bath":       "south west",
	"exeter":     "south west",
	"plymouth":   "south west",
	"swindon":    "south west",
	"cheltenham": "south west",
	"gloucester": "south west",

	"birmingham":    "west midlands",
	"coventry":      "west midlands",
	"wolverhampton": "west midlands",
	"worcester":     "west midlands",

	"nottingham":  "east midlands",
	"leicester":   "east midlands",
	"derby":       "east midlands",
	"northampton": "east midlands",
	"lincoln":     "east midlands",

	"manchester": "north west",
	"liverpool":  "north west",
	"preston":    "north west",
	"chester":    "north west",
	"warrington": "north west",
	"salford":    "north west",

	"leeds":     "yorkshire",
	"sheffield": "yorkshire",
	"york":      "yorkshire",
	"bradford":  "yorkshire",
	"hull":      "yorkshire",

	"newcastle":     "north east",
	"sunderland":    "north east",
	"durham":        "north east",
	"middlesbrough": "north east",

	"cardiff": "wales",
	"swansea": "wales",
	"newport": "wales",

	"edinburgh": "scotland",
	"glasgow":   "scotland",
	"aberdeen":  "scotland",
	"dundee":    "scotland",

	"belfast": "northern ireland",
	"dublin":  "ireland",
	"cork":    "ireland",

	// elsewhere
	"new york":      "new york metro",
	"nyc":           "new york metro",
	"brooklyn":      "new york metro",
	"jersey city":   "new york metro",
	"newark":        "new york metro",
	"san francisco": "bay area",
	"sf":            "bay area",
	"oakland":       "bay area",
	"san jose":      "bay area",
	"palo alto":     "bay area",
	"mountain view": "bay area",
	"amsterdam":     "netherlands",
	"rotterdam":     "netherlands",
	"the hague":     "netherlands",
	"berlin":        "germany",
	"munich":        "germany",
	"hamburg":       "germany",
	"frankfurt":     "germany",
	"paris":         "france",
	"lyon":          "france",
}

// regionAdjacency lists regions a worker could plausibly commute between.
var regionAdjacency = map[string][]string{
	"london":           {"south east", "east of england"},
	"south east":       {"london", "east of england", "south west"},
	"east of england":  {"london", "south east", "east midlands"},
	"south west":       {"south east", "west midlands", "wales"},
	"west midlands":    {"south west", "east midlands", "north west", "wales"},
	"east midlands":    {"east of england", "west midlands", "yorkshire"},
	"north west":       {"west midlands", "yorkshire", "wales"},
	"yorkshire":        {"east midlands", "north west", "north east"},
	"north east":       {"yorkshire", "scotland"},
	"wales":            {"south west", "west midlands", "north west"},
	"scotland":         {"north east"},
	"northern ireland": {"ireland"},
	"ireland":          {"northern ireland"},
	"new york metro":   {},
	"bay area":         {},
	"netherlands":      {"germany"},
	"germany":          {"netherlands", "france"},
	"france":           {"germany"},
}

// regionHops returns the number of adjacency steps between two regions, or -1
// when they are further apart than maxHops.
func regionHops(from, to string, maxHops int) int {
	if from == to {
		return 0
	}

	visited := map[string]struct{}{from: {}}
	frontier := []string{from}
	for hops := 1; hops <= maxHops; hops++ {
		var next []string
		for _, region := range frontier {
			for _, neighbour := range regionAdjacency[region] {
				if neighbour == to {
					return hops
				}
				if _, seen := visited[neighbour]; seen {
					continue
				}
				visited[neighbour] = struct{}{}
				next = append(next, neighbour)
			}
		}
		frontier = next
	}

	return -1
}
