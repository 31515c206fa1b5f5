package parser

const attendancePage = `<html><head><title>My Attendance</title></head>
<body>
<table width="100%"><tr><td><img src="logo.gif"></td><td>Student Portal</td></tr></table>
<table class="plum_fieldbig">
<tr><th>Days</th><th>ITITC601</th><th>CSE301</th></tr>
<tr><td>Overall (%)</td><td>88.89</td><td>92.00</td></tr>
<tr><td>Overall Class</td><td>45</td><td>50</td></tr>
<tr><td>Overall Present</td><td>40</td><td>46</td></tr>
<tr><td>Overall Absent</td><td>5</td><td>4</td></tr>
</table>
<div class="legend">ITITC601-Web Technology<br>CSE301-Data Structures<br></div>
</body></html>`
