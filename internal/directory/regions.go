package directory

// Region is one of the 11 regional groupings used for site navigation.
type Region struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Prefecture is an observation area within a region. The ID matches the
// leading two digits of location codes in that area.
type Prefecture struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OkinawaPrefectureID is the combined id for the Okinawa area, whose location
// codes span the 91–94 prefixes.
const OkinawaPrefectureID = "9194"

// Regions lists the 11 regions in display order.
var Regions = []Region{
	{ID: "01", Name: "北海道地方"},
	{ID: "02", Name: "東北地方"},
	{ID: "03", Name: "関東地方"},
	{ID: "04", Name: "甲信地方"},
	{ID: "05", Name: "東海地方"},
	{ID: "06", Name: "北陸地方"},
	{ID: "07", Name: "近畿地方"},
	{ID: "08", Name: "中国地方"},
	{ID: "09", Name: "四国地方"},
	{ID: "10", Name: "九州地方"},
	{ID: "11", Name: "沖縄地方"},
}

// PrefecturesByRegion groups observation areas by region id.
var PrefecturesByRegion = map[string][]Prefecture{
	"01": {
		{ID: "11", Name: "宗谷"}, {ID: "12", Name: "上川"}, {ID: "13", Name: "留萌"},
		{ID: "14", Name: "石狩"}, {ID: "15", Name: "空知"}, {ID: "16", Name: "後志"},
		{ID: "17", Name: "ｵﾎｰﾂｸ"}, {ID: "18", Name: "根室"}, {ID: "19", Name: "釧路"},
		{ID: "20", Name: "十勝"}, {ID: "21", Name: "胆振"}, {ID: "22", Name: "日高"},
		{ID: "23", Name: "渡島"}, {ID: "24", Name: "檜山"},
	},
	"02": {
		{ID: "31", Name: "青森"}, {ID: "32", Name: "秋田"}, {ID: "33", Name: "岩手"},
		{ID: "34", Name: "宮城"}, {ID: "35", Name: "山形"}, {ID: "36", Name: "福島"},
	},
	"03": {
		{ID: "40", Name: "茨城"}, {ID: "41", Name: "栃木"}, {ID: "42", Name: "群馬"},
		{ID: "43", Name: "埼玉"}, {ID: "44", Name: "東京"}, {ID: "45", Name: "千葉"},
		{ID: "46", Name: "神奈川"},
	},
	"04": {
		{ID: "48", Name: "長野"}, {ID: "49", Name: "山梨"},
	},
	"05": {
		{ID: "50", Name: "静岡"}, {ID: "51", Name: "愛知"}, {ID: "52", Name: "岐阜"},
		{ID: "53", Name: "三重"},
	},
	"06": {
		{ID: "54", Name: "新潟"}, {ID: "55", Name: "富山"}, {ID: "56", Name: "石川"},
		{ID: "57", Name: "福井"},
	},
	"07": {
		{ID: "60", Name: "滋賀"}, {ID: "61", Name: "京都"}, {ID: "62", Name: "大阪"},
		{ID: "63", Name: "兵庫"}, {ID: "64", Name: "奈良"}, {ID: "65", Name: "和歌山"},
	},
	"08": {
		{ID: "66", Name: "岡山"}, {ID: "67", Name: "広島"}, {ID: "68", Name: "島根"},
		{ID: "69", Name: "鳥取"}, {ID: "81", Name: "山口"},
	},
	"09": {
		{ID: "71", Name: "徳島"}, {ID: "72", Name: "香川"}, {ID: "73", Name: "愛媛"},
		{ID: "74", Name: "高知"},
	},
	"10": {
		{ID: "82", Name: "福岡"}, {ID: "83", Name: "大分"}, {ID: "84", Name: "長崎"},
		{ID: "85", Name: "佐賀"}, {ID: "86", Name: "熊本"}, {ID: "87", Name: "宮崎"},
		{ID: "88", Name: "鹿児島"},
	},
	"11": {
		{ID: OkinawaPrefectureID, Name: "沖縄"},
	},
}

// RegionName returns the display name for a region id, or "".
func RegionName(regionID string) string {
	for _, r := range Regions {
		if r.ID == regionID {
			return r.Name
		}
	}
	return ""
}

// PrefectureName returns the display name for a prefecture area id, or "".
func PrefectureName(prefectureID string) string {
	for _, prefs := range PrefecturesByRegion {
		for _, p := range prefs {
			if p.ID == prefectureID {
				return p.Name
			}
		}
	}
	return ""
}

// RegionByPrefectureID returns the region id containing a prefecture area,
// defaulting to Kanto for unknown ids.
func RegionByPrefectureID(prefectureID string) string {
	for regionID, prefs := range PrefecturesByRegion {
		for _, p := range prefs {
			if p.ID == prefectureID {
				return regionID
			}
		}
	}
	return "03"
}
