package weather

// WMO weather interpretation codes as used by Open-Meteo.
var codeDescriptions = map[int]string{
	0:  "ясно",
	1:  "преимущественно ясно",
	2:  "переменная облачность",
	3:  "пасмурно",
	45: "туман",
	48: "изморозь",
	51: "слабая морось",
	53: "морось",
	55: "сильная морось",
	56: "слабая ледяная морось",
	57: "ледяная морось",
	61: "небольшой дождь",
	63: "дождь",
	65: "сильный дождь",
	66: "слабый ледяной дождь",
	67: "ледяной дождь",
	71: "небольшой снег",
	73: "снег",
	75: "сильный снег",
	77: "снежная крупа",
	80: "небольшой ливень",
	81: "ливень",
	82: "сильный ливень",
	85: "снегопад",
	86: "сильный снегопад",
	95: "гроза",
	96: "гроза с небольшим градом",
	99: "гроза с градом",
}

// Describe maps a WMO code to Russian text. Unknown codes read as "без осадков".
func Describe(code int) string {
	if d, ok := codeDescriptions[code]; ok {
		return d
	}
	return "без осадков"
}
