package catalog

// defaultEntries is the production product table. Kits list component
// keys in Children and are replaced by them during lookup. Order
// matters: resolution scans the table top to bottom.
var defaultEntries = []Entry{
	{Key: "RO900S", Code: "1414", Name: "RO-900S E.P微電腦可調式RO純水機", Children: []string{"R-002", "R-001"}},
	{Key: "RO600G", Code: "1581", Name: "EVERPOLL-RO-600G RO機", Children: []string{"RO600G主", "RO500G膜", "RO500G炭", "RO500GPP"}},
	{Key: "RO600G主", Code: "1581", Name: "EVERPOLL-RO-600G RO機"},
	{Key: "RO500G膜", Code: "1558", Name: "RO500G 第二道RO逆滲透膜", CycleMonths: 24},
	{Key: "RO500G炭", Code: "1559", Name: "RO500G 第三道活性炭濾芯", CycleMonths: 12},
	{Key: "RO500GPP", Code: "1557", Name: "RO500G 第一道玄武岩合成活性PP", CycleMonths: 6},
	{Key: "ONYX", Code: "1587", Name: "LIVINGCARE-Onyx-即冷熱直飲機", Children: []string{"ONYX濾芯1", "ONYX濾芯2"}},
	{Key: "ONYX濾芯1", Code: "1592", Name: "ONYX-鈣抑正電荷 E-Positive Ak Filter", CycleMonths: 12},
	{Key: "ONYX濾芯2", Code: "1591", Name: "ONYX-活性碳PH Carbon Block Ak Filter", CycleMonths: 12},
	{Key: "CHP101", Code: "1586", Name: "LIVINGCARE-CHP-101即冷熱直飲機", Children: []string{"CHP101濾芯1", "CHP101濾芯2"}},
	{Key: "CHP101濾芯1", Code: "1594", Name: "CHP101-鈣抑正電荷E-Positive Ak Filter", CycleMonths: 12},
	{Key: "CHP101濾芯2", Code: "1593", Name: "CHP101-活性碳Carbon Block Ak Filter", CycleMonths: 12},
	{Key: "MF330", Name: "MF330 組合", Children: []string{"MF110", "MF220"}},
	{Key: "MF110", Code: "1192", Name: "MF110 EVERPOLL商用高流量飲用水過濾系統", CycleMonths: 12},
	{Key: "MF220", Code: "1193", Name: "MF220 EVERPOLL商用高流量樹脂離子交換系統", CycleMonths: 6},
	{Key: "DC3000", Name: "DC3000 組合", Children: []string{"DC2000", "DC1000"}},
	{Key: "HS990", Code: "1005", Name: "HS990智慧節能殺菌飲水機"},
	{Key: "HM290", Code: "1087", Name: "HM290 直立式冰溫熱飲水機(白色)"},
	{Key: "EP298", Code: "1116", Name: "EVERPOLL- EVB-298 智能雙溫飲水機"},
	{Key: "HM190", Code: "1089", Name: "HM190 桌上型冰冷熱飲水機(白)"},
	{Key: "EP398", Code: "1649", Name: "EVB-398 智能櫥下型三溫UV觸控飲水機"},
	{Key: "EP168PLUS", Code: "1650", Name: "EP-168PLUS-廚下型調溫無壓飲水機"},
	{Key: "M3", Code: "1613", Name: "HS-M3 櫥下型冰溫熱飲水機"},
	{Key: "十秒機", Code: "1194", Name: "10SM EVERPOLL-十秒機(OZONE活氧)"},
	{Key: "UVC-902", Code: "1267", Name: "UVC-902滅菌設備"},
	{Key: "MAXTEC", Code: "1003", Name: "Maxtec X-6 紫外線殺菌燈組"},
	{Key: "壓力桶3G", Code: "1206", Name: "壓力桶（3L)"},
	{Key: "壓力桶1.5G", Code: "1474", Name: "壓力桶（1.5l）"},
	{Key: "龍頭", Code: "1138", Name: "EVERPURE-TOP 原裝水龍頭"},
	{Key: "4GUV", Code: "1199", Name: "PHILIPS-UV-SET 紫外線殺菌燈組-4G", CycleMonths: 12},
	{Key: "6GUV", Code: "1015", Name: "PHILIPS-UV-SET 紫外線殺菌燈組-6G/25W", CycleMonths: 12},
	{Key: "1GUV", Code: "1099", Name: "PHILIPS-UV-SET 紫外線殺菌燈組-1G/6W", CycleMonths: 12},
	{Key: "12GUV", Code: "1014", Name: "PHILIPS-UV-SET 紫外線殺菌燈組-12G/40W", CycleMonths: 12},
	{Key: "2GUV", Code: "1016", Name: "PHILIPS-UV-SET 紫外線殺菌燈組-2G/16W", CycleMonths: 12},
	{Key: "PHILIPS 2G/16W 殺菌燈", Code: "1016", Name: "PHILIPS 2G/16W 殺菌燈", CycleMonths: 12},
	{Key: "PHILLIPS 2G/16W 殺菌燈", Code: "1016", Name: "PHILIPS 2G/16W 殺菌燈", CycleMonths: 12},
	{Key: "PHILIPS2G16W", Code: "1016", Name: "PHILIPS 2G/16W 殺菌燈", CycleMonths: 12},
	{Key: "PHILLIPS2G16W", Code: "1016", Name: "PHILIPS 2G/16W 殺菌燈", CycleMonths: 12},
	{Key: "2G/16W 殺菌燈", Code: "1016", Name: "PHILIPS 2G/16W 殺菌燈", CycleMonths: 12},
	{Key: "2GUV16W", Code: "1016", Name: "PHILIPS 2G/16W 殺菌燈", CycleMonths: 12},
	{Key: "PHILIPS 2G UV 殺菌燈", Code: "1016", Name: "PHILIPS 2G/16W 殺菌燈", CycleMonths: 12},
	{Key: "PHILLIPS 2G UV 殺菌燈", Code: "1016", Name: "PHILIPS 2G/16W 殺菌燈", CycleMonths: 12},
	{Key: "UF", Code: "1439", Name: "MAXTEC-UF超濾膜濾芯", CycleMonths: 12},
	{Key: "PBS400", Code: "1183", Name: "EVERPURE-PBS400直飲過濾系統", CycleMonths: 12},
	{Key: "H104", Code: "1182", Name: "EVERPURE-H104直飲過濾系統", CycleMonths: 12},
	{Key: "EF6000", Code: "1217", Name: "EVERPURE-EF6000直飲過濾系統", CycleMonths: 12},
	{Key: "FH301", Code: "1214", Name: "EVERPOLL-FH301全屋過濾系統", CycleMonths: 12},
	{Key: "FH500", Code: "1339", Name: "EVERPOLL-FH500中央過濾系統", CycleMonths: 12},
	{Key: "FH230", Code: "1563", Name: "EVERPOLL-FH230 全屋過濾淨系統", CycleMonths: 12},
	{Key: "FH200", Code: "1578", Name: "EVERPOLL-FH200全屋過濾淨系統", CycleMonths: 12},
	{Key: "DC2000", Code: "1119", Name: "EVERPOLL-DC2000 英國無納離子交換樹脂系統", CycleMonths: 6},
	{Key: "DC1000", Code: "1120", Name: "EVERPOLL-DC1000 單道雙效複合式系統", CycleMonths: 12},
	{Key: "AHP150", Code: "1137", Name: "EVERPOLL-AHP150中央過濾系統", CycleMonths: 12},
	{Key: "10吋PP", Code: "1101", Name: "10吋-PP過濾棉", CycleMonths: 6},
	{Key: "20吋PP", Code: "1100", Name: "20吋-PP過濾棉", CycleMonths: 6},
	{Key: "T33", Code: "1017", Name: "Filter T33 Small濾芯", CycleMonths: 12},
	{Key: "CLARIS-XL", Code: "1682", Name: "EVERPURE-CLARIS-XL", CycleMonths: 12},
	{Key: "PWCE16F10", Code: "1512", Name: "EVERPURE軟水系統PWCE16F10"},
	{Key: "RO150G", Code: "1019", Name: `Filter PP1um 10"濾芯`, CycleMonths: 6},
	{Key: "RO100G", Code: "1019", Name: `Filter PP1um 10"濾芯`, CycleMonths: 6},
	{Key: "RO400G", Code: "1019", Name: `Filter PP1um 10"濾芯`, CycleMonths: 6},
	{Key: "雙頭MC", Code: "1249", Name: "EVERPURE-QC71-TWIN-MC2"},
	{Key: "雙頭I2000", Code: "1227", Name: "EVERPURE-QC71-TWIN-I20002"},
	{Key: "R-001", Code: "1350", Name: "R-001多折式雙效復合濾芯", CycleMonths: 12},
	{Key: "R-002", Code: "1351", Name: "R-002高效抗污RO膜", CycleMonths: 24},
	{Key: "MC2", Code: "1146", Name: "EVERPURE-MC2 濾芯"},
}
